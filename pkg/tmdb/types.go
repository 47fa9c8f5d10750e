package tmdb

// MediaType identifies the kind of title a TMDB endpoint operates on.
type MediaType string

const (
	// MediaTypeTV addresses the TV-series endpoints.
	MediaTypeTV MediaType = "tv"
	// MediaTypeMovie addresses the movie endpoints.
	MediaTypeMovie MediaType = "movie"
)

// SortPopularityDesc orders discover feeds by descending popularity.
const SortPopularityDesc = "popularity.desc"

// Extras that can be appended to a details lookup in a single request.
const (
	ExtraCredits        = "credits"
	ExtraVideos         = "videos"
	ExtraWatchProviders = "watch/providers"
	ExtraKeywords       = "keywords"
)

// Item is a single entry of a TMDB list payload (discover, recommendations, trending).
// Series payloads carry Name, movie payloads carry Title; the remaining fields are shared.
type Item struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	Overview       string          `json:"overview"`
	PosterPath     string          `json:"poster_path"`
	BackdropPath   string          `json:"backdrop_path"`
	Popularity     float64         `json:"popularity"`
	VoteAverage    float64         `json:"vote_average"`
	FirstAirDate   string          `json:"first_air_date"`
	ReleaseDate    string          `json:"release_date"`
	WatchProviders *WatchProviders `json:"watch/providers"`
}

// Page is a paginated TMDB list payload.
type Page struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a single credited cast entry.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// Credits holds the cast list appended to a details lookup.
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// Video is a single video entry (trailers, teasers, clips).
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Videos holds the video list appended to a details lookup.
type Videos struct {
	Results []Video `json:"results"`
}

// Keyword is a single keyword entry.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keywords holds the keyword list appended to a details lookup.
type Keywords struct {
	Results []Keyword `json:"results"`
}

// ProviderOffer is one streaming provider entry inside a region's availability block.
type ProviderOffer struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	DisplayPriority int    `json:"display_priority"`
}

// RegionOffers groups a region's availability by offer category.
type RegionOffers struct {
	Link     string          `json:"link"`
	Flatrate []ProviderOffer `json:"flatrate"`
	Rent     []ProviderOffer `json:"rent"`
	Buy      []ProviderOffer `json:"buy"`
}

// WatchProviders is the availability block keyed by region code.
type WatchProviders struct {
	Results map[string]RegionOffers `json:"results"`
}

// Details is the full record of a single title, including the extras appended to the lookup.
type Details struct {
	Item
	Genres          []Genre   `json:"genres"`
	NumberOfSeasons int       `json:"number_of_seasons"`
	Credits         *Credits  `json:"credits"`
	Videos          *Videos   `json:"videos"`
	Keywords        *Keywords `json:"keywords"`
}

// ImagesConfiguration is the TMDB /configuration payload.
type ImagesConfiguration struct {
	Images struct {
		BaseURL       string   `json:"base_url"`
		SecureBaseURL string   `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
		BackdropSizes []string `json:"backdrop_sizes"`
	} `json:"images"`
}
