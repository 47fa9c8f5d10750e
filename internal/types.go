package internal

import (
	"github.com/streamatch/backend/pkg/tmdb"
)

// MediaType is the display media type of a title, as the front-end renders it.
type MediaType string

const (
	MediaTypeSeries MediaType = "Série"
	MediaTypeMovie  MediaType = "Filme"
)

// Service is the canonical tag of a supported streaming service.
type Service string

const (
	ServiceNetflix   Service = "netflix"
	ServicePrime     Service = "prime"
	ServiceDisney    Service = "disney"
	ServiceMax       Service = "max"
	ServiceApple     Service = "apple"
	ServiceGloboplay Service = "globoplay"
	// ServiceUnknown marks a title that could not be attributed to a supported service.
	ServiceUnknown Service = "unknown"
)

// Title is the canonical title record delivered to the front-end.
type Title struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Img     string    `json:"img"`
	Type    MediaType `json:"type"`
	Service Service   `json:"service"`
}

// SuggestionsPage is a single page of ranked suggestions.
// HasMore signals that requesting another page is worthwhile, not that more
// distinct content is guaranteed to exist.
type SuggestionsPage struct {
	Suggestions []Title `json:"suggestions"`
	HasMore     bool    `json:"has_more"`
	CurrentPage int     `json:"current_page"`
}

// TitleDetails is the expanded record behind the details modal.
type TitleDetails struct {
	Synopsis    string   `json:"synopsis"`
	Genres      []string `json:"genres"`
	Cast        []string `json:"cast"`
	TrailerKey  string   `json:"trailer_key,omitempty"`
	BackdropImg string   `json:"backdrop_img,omitempty"`
}

// ImageConfig holds the provider's image base URL and the sizes used when
// building poster and backdrop URLs. It is resolved once at startup and
// never mutated afterwards.
type ImageConfig struct {
	BaseURL      string
	PosterSize   string
	BackdropSize string
}

// DefaultImageConfig returns the hardcoded fallback used when the provider's
// image configuration cannot be fetched at startup.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		BaseURL:      "https://image.tmdb.org/t/p/",
		PosterSize:   "w500",
		BackdropSize: "w1280",
	}
}

// ImageConfigFromProvider builds an ImageConfig from the provider's
// /configuration payload, keeping the defaults for anything absent.
func ImageConfigFromProvider(ic *tmdb.ImagesConfiguration) ImageConfig {
	cfg := DefaultImageConfig()

	if ic == nil {
		return cfg
	}

	if ic.Images.SecureBaseURL != "" {
		cfg.BaseURL = ic.Images.SecureBaseURL
	}
	cfg.PosterSize = pickSize(ic.Images.PosterSizes, cfg.PosterSize)
	cfg.BackdropSize = pickSize(ic.Images.BackdropSizes, cfg.BackdropSize)

	return cfg
}

func pickSize(sizes []string, preferred string) string {
	for _, s := range sizes {
		if s == preferred {
			return s
		}
	}
	if len(sizes) > 0 {
		return sizes[len(sizes)-1]
	}
	return preferred
}
