package catalog

import (
	"strings"
	"time"

	"watchreel/models"
)

// Genre ids as assigned by the external catalog.
const (
	genreAnimation = 16
	genreHorror    = 27
)

// Title keywords that mark a film as anime regardless of language or
// genre tags.
var animeTitleKeywords = []string{
	"anime",
	"ghibli",
	"naruto",
	"one piece",
	"dragon ball",
	"pokemon",
	"evangelion",
	"jujutsu",
	"demon slayer",
}

// Priorities used for the snapshot ordering. The priority is a ranking
// signal only and is stripped before persistence.
const (
	PriorityLow  = 0
	PriorityHigh = 1
)

// IsRecent reports whether a film's release year falls within the last ten
// years, inclusive. Records without a parseable release year are not
// recent. This runs before any detail fetch so out-of-window titles never
// cost an API call.
func IsRecent(rec models.CatalogRecord, now time.Time) bool {
	date := models.ParseDomainDate(rec.Date())
	if date.IsZero() {
		return false
	}
	return date.Year() >= now.Year()-10
}

// IsAnime reports whether a film is anime: Japanese original language with
// the Animation genre, or a known anime keyword in the title.
func IsAnime(rec models.CatalogRecord) bool {
	if rec.OriginalLanguage == "ja" && hasGenre(rec, genreAnimation) {
		return true
	}
	title := strings.ToLower(rec.DisplayTitle())
	for _, kw := range animeTitleKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// IsHorror reports whether a record carries the Horror genre.
func IsHorror(rec models.CatalogRecord) bool {
	return hasGenre(rec, genreHorror)
}

func hasGenre(rec models.CatalogRecord, id int) bool {
	for _, g := range rec.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

// IsRatedGOrPG reports whether a film detail document carries a US
// certification of G or PG. Absent US certification data means the film is
// not excluded.
func IsRatedGOrPG(doc *models.DetailDocument) bool {
	if doc == nil || doc.ReleaseDates == nil {
		return false
	}
	for _, country := range doc.ReleaseDates.Results {
		if country.ISO3166 != "US" {
			continue
		}
		for _, rel := range country.Releases {
			cert := strings.ToUpper(strings.TrimSpace(rel.Certification))
			if cert == "G" || cert == "PG" {
				return true
			}
		}
	}
	return false
}

// IsRatedTVGOrTVPG reports whether a series detail document carries a US
// content rating of TV-G or TV-PG.
func IsRatedTVGOrTVPG(doc *models.DetailDocument) bool {
	if doc == nil || doc.ContentRatings == nil {
		return false
	}
	for _, country := range doc.ContentRatings.Results {
		if country.ISO3166 != "US" {
			continue
		}
		rating := strings.ToUpper(strings.TrimSpace(country.Rating))
		if rating == "TV-G" || rating == "TV-PG" {
			return true
		}
	}
	return false
}

// Priority ranks a record for the snapshot sort. Films classified anime or
// horror are low priority; everything else, including all series, is high.
func Priority(rec models.CatalogRecord, isMovie bool) int {
	if isMovie && (IsAnime(rec) || IsHorror(rec)) {
		return PriorityLow
	}
	return PriorityHigh
}
