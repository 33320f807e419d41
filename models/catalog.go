package models

import "time"

// Kind identifies one of the two snapshot families.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// SnapshotFile returns the snapshot file name for this kind.
func (k Kind) SnapshotFile() string {
	if k == KindMovie {
		return "movies.json"
	}
	return "series.json"
}

// IsMovie reports whether this kind is the film snapshot.
func (k Kind) IsMovie() bool { return k == KindMovie }

// CatalogRecord is a minimal title summary from a bulk listing endpoint.
// It is consumed within one pipeline pass and never persisted.
type CatalogRecord struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	PosterPath       string  `json:"poster_path"`
	Popularity       float64 `json:"popularity"`
}

// DisplayTitle returns the movie title or series name, whichever is set.
func (r CatalogRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Date returns the release date (movie) or first-air date (series).
func (r CatalogRecord) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// Genre is a catalog genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one projected credits entry.
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// CrewMember is one projected crew entry, filtered to relevant jobs.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Keyword is a projected keyword tag.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video is a projected trailer or teaser.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
	Site string `json:"site"`
}

// RelatedTitle is a projected recommendation or similar-title entry.
type RelatedTitle struct {
	ID         int64  `json:"id"`
	Title      string `json:"title,omitempty"`
	Name       string `json:"name,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
}

// Translation is a projected translation entry.
type Translation struct {
	ISO3166 string `json:"iso_3166_1"`
	ISO639  string `json:"iso_639_1"`
	Name    string `json:"name"`
	English string `json:"english_name"`
}

// Network is a broadcasting network (series only).
type Network struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EnrichedItem is one persisted snapshot entry. Items are created by a
// single ingestion run and fully replaced by the next run of the same kind.
type EnrichedItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ExternalID   int64    `json:"external_id"`
	PosterPath   *string  `json:"poster_path"`
	ListType     string   `json:"list_type"`
	Services     []string `json:"services"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	FirstAirDate string   `json:"first_air_date,omitempty"`
	IsMovie      bool     `json:"is_movie"`

	// Extended fields, all optional and independently present.
	Genres           []Genre        `json:"genres,omitempty"`
	Overview         string         `json:"overview,omitempty"`
	VoteAverage      float64        `json:"vote_average,omitempty"`
	VoteCount        int            `json:"vote_count,omitempty"`
	Runtime          int            `json:"runtime,omitempty"`
	Cast             []CastMember   `json:"cast,omitempty"`
	Crew             []CrewMember   `json:"crew,omitempty"`
	Keywords         []Keyword      `json:"keywords,omitempty"`
	Videos           []Video        `json:"videos,omitempty"`
	Recommendations  []RelatedTitle `json:"recommendations,omitempty"`
	Similar          []RelatedTitle `json:"similar,omitempty"`
	Translations     []Translation  `json:"translations,omitempty"`
	Networks         []Network      `json:"networks,omitempty"`
	NumberOfSeasons  int            `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int            `json:"number_of_episodes,omitempty"`
}

// DomainDate returns the content's own chronological date: the release
// date for films, the first-air date for series.
func (i EnrichedItem) DomainDate() string {
	if i.IsMovie {
		return i.ReleaseDate
	}
	return i.FirstAirDate
}

// ParseDomainDate parses a snapshot date string. The zero time is returned
// for empty or malformed values.
func ParseDomainDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t
}
