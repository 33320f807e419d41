package models

// DetailDocument is the raw per-title detail resource with embedded
// sub-resources, fetched in a single request via declarative inclusion.
// Field presence depends on the media type; consumers treat anything
// missing as an absent optional field.
type DetailDocument struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Runtime          int     `json:"runtime,omitempty"`
	Genres           []Genre `json:"genres"`
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`

	Networks  []Network       `json:"networks,omitempty"`
	CreatedBy []DetailCreator `json:"created_by,omitempty"`

	Credits         *DetailCredits      `json:"credits,omitempty"`
	Keywords        *DetailKeywords     `json:"keywords,omitempty"`
	Videos          *DetailVideos       `json:"videos,omitempty"`
	Recommendations *DetailTitleList    `json:"recommendations,omitempty"`
	Similar         *DetailTitleList    `json:"similar,omitempty"`
	Translations    *DetailTranslations `json:"translations,omitempty"`

	// Certification sub-documents: films carry release_dates, series
	// carry content_ratings.
	ReleaseDates   *DetailReleaseDates   `json:"release_dates,omitempty"`
	ContentRatings *DetailContentRatings `json:"content_ratings,omitempty"`
}

// DisplayTitle returns the movie title or series name, whichever is set.
func (d DetailDocument) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// Date returns the release date (movie) or first-air date (series).
func (d DetailDocument) Date() string {
	if d.ReleaseDate != "" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}

type DetailCreator struct {
	Name string `json:"name"`
}

type DetailCredits struct {
	Cast []DetailCastMember `json:"cast"`
	Crew []DetailCrewMember `json:"crew"`
}

type DetailCastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type DetailCrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// DetailKeywords holds keyword lists; the bulk endpoint nests them under
// "keywords" for films and "results" for series.
type DetailKeywords struct {
	Keywords []Keyword `json:"keywords"`
	Results  []Keyword `json:"results"`
}

// All returns whichever keyword list the document carries.
func (k DetailKeywords) All() []Keyword {
	if len(k.Keywords) > 0 {
		return k.Keywords
	}
	return k.Results
}

type DetailVideos struct {
	Results []Video `json:"results"`
}

type DetailTitleList struct {
	Results []RelatedTitle `json:"results"`
}

type DetailTranslations struct {
	Translations []Translation `json:"translations"`
}

type DetailReleaseDates struct {
	Results []CountryReleases `json:"results"`
}

type CountryReleases struct {
	ISO3166  string         `json:"iso_3166_1"`
	Releases []ReleaseEntry `json:"release_dates"`
}

type ReleaseEntry struct {
	Certification string `json:"certification"`
	Type          int    `json:"type"`
}

type DetailContentRatings struct {
	Results []CountryRating `json:"results"`
}

type CountryRating struct {
	ISO3166 string `json:"iso_3166_1"`
	Rating  string `json:"rating"`
}
