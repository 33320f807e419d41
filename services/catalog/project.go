package catalog

import (
	"strings"

	"watchreel/models"
)

// Projection bounds: each embedded sub-resource is truncated to a fixed,
// denormalized size before persistence.
const (
	maxCast         = 15
	maxCrew         = 10
	maxKeywords     = 15
	maxVideos       = 5
	maxRelated      = 10
	maxTranslations = 20
)

// videoHost is the only accepted video source.
const videoHost = "YouTube"

// Crew job allow-lists per medium.
var movieCrewJobs = map[string]bool{
	"Director":           true,
	"Writer":             true,
	"Screenplay":         true,
	"Producer":           true,
	"Executive Producer": true,
}

var seriesCrewJobs = map[string]bool{
	"Creator":            true,
	"Executive Producer": true,
	"Showrunner":         true,
	"Director":           true,
	"Writer":             true,
}

// Exact provider-name to service-key mappings. Names not listed fall back
// to a lower-cased, whitespace-stripped slug.
var providerKeys = map[string]string{
	"Netflix":            "netflix",
	"Disney Plus":        "disney",
	"Amazon Prime Video": "prime",
	"Hulu":               "hulu",
	"Max":                "max",
	"HBO Max":            "max",
	"Apple TV Plus":      "apple",
	"Paramount Plus":     "paramount",
	"Peacock":            "peacock",
	"Peacock Premium":    "peacock",
	"Crunchyroll":        "crunchyroll",
	"Tubi":               "tubi",
}

// ServiceKey maps a watch-provider display name to a subscription service
// key. Exact matches win; unknown names degrade to a slug.
func ServiceKey(name string) string {
	if key, ok := providerKeys[name]; ok {
		return key
	}
	slug := strings.ToLower(name)
	slug = strings.Join(strings.Fields(slug), "")
	return slug
}

// ApplyDetail projects a detail document's embedded sub-resources onto an
// item: deterministic truncation and selection, never arbitrary picks.
// This is the single projection path shared by the batch pipeline and the
// on-demand lookup.
func ApplyDetail(item *models.EnrichedItem, doc *models.DetailDocument, isMovie bool) {
	if doc == nil {
		return
	}

	if len(doc.Genres) > 0 {
		item.Genres = doc.Genres
	}
	item.Overview = doc.Overview
	item.VoteAverage = doc.VoteAverage
	item.VoteCount = doc.VoteCount
	if isMovie {
		item.Runtime = doc.Runtime
	} else {
		item.Networks = doc.Networks
		item.NumberOfSeasons = doc.NumberOfSeasons
		item.NumberOfEpisodes = doc.NumberOfEpisodes
	}

	if doc.Credits != nil {
		item.Cast = projectCast(doc.Credits.Cast)
		item.Crew = projectCrew(doc, isMovie)
	}
	if doc.Keywords != nil {
		item.Keywords = truncateKeywords(doc.Keywords.All())
	}
	if doc.Videos != nil {
		item.Videos = projectVideos(doc.Videos.Results)
	}
	if doc.Recommendations != nil {
		item.Recommendations = truncateRelated(doc.Recommendations.Results)
	}
	if doc.Similar != nil {
		item.Similar = truncateRelated(doc.Similar.Results)
	}
	if doc.Translations != nil {
		item.Translations = truncateTranslations(doc.Translations.Translations)
	}
}

func projectCast(cast []models.DetailCastMember) []models.CastMember {
	out := make([]models.CastMember, 0, maxCast)
	for _, m := range cast {
		out = append(out, models.CastMember{
			Name:        m.Name,
			Character:   m.Character,
			ProfilePath: m.ProfilePath,
		})
		if len(out) == maxCast {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// projectCrew filters crew to the medium's job allow-list and truncates.
// Series prepend created_by entries, tagged as Creator, ahead of the
// filtered crew before truncation.
func projectCrew(doc *models.DetailDocument, isMovie bool) []models.CrewMember {
	jobs := seriesCrewJobs
	if isMovie {
		jobs = movieCrewJobs
	}

	var out []models.CrewMember
	if !isMovie {
		for _, creator := range doc.CreatedBy {
			out = append(out, models.CrewMember{Name: creator.Name, Job: "Creator"})
		}
	}
	for _, m := range doc.Credits.Crew {
		if !jobs[m.Job] {
			continue
		}
		out = append(out, models.CrewMember{Name: m.Name, Job: m.Job})
	}
	if len(out) > maxCrew {
		out = out[:maxCrew]
	}
	return out
}

func projectVideos(videos []models.Video) []models.Video {
	var out []models.Video
	for _, v := range videos {
		if v.Site != videoHost {
			continue
		}
		if v.Type != "Trailer" && v.Type != "Teaser" {
			continue
		}
		out = append(out, v)
		if len(out) == maxVideos {
			break
		}
	}
	return out
}

func truncateKeywords(keywords []models.Keyword) []models.Keyword {
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}

func truncateRelated(titles []models.RelatedTitle) []models.RelatedTitle {
	if len(titles) > maxRelated {
		titles = titles[:maxRelated]
	}
	if len(titles) == 0 {
		return nil
	}
	return titles
}

func truncateTranslations(translations []models.Translation) []models.Translation {
	if len(translations) > maxTranslations {
		translations = translations[:maxTranslations]
	}
	if len(translations) == 0 {
		return nil
	}
	return translations
}

// ItemFromDetail builds a standalone item from a detail document, for the
// single-title lookup path where no catalog record exists.
func ItemFromDetail(doc *models.DetailDocument, kind models.Kind) models.EnrichedItem {
	item := newItem(kind, doc.ID, doc.DisplayTitle(), doc.PosterPath, doc.ReleaseDate, doc.FirstAirDate)
	ApplyDetail(&item, doc, kind.IsMovie())
	return item
}
