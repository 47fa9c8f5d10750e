package internal

import (
	"github.com/streamatch/backend/pkg/tmdb"
)

// placeholderImageURL is served when a title has no poster art.
const placeholderImageURL = "https://placehold.co/500x750/1a1a1a/FFF?text=Sem+Imagem"

// FormatTitle normalizes a raw provider record into the canonical Title shape.
// The display name falls back from the series name field to the movie title
// field. The media type comes from the caller, never from the payload shape.
// When service is empty the title's embedded availability block is resolved;
// callers that already resolved the service pass it through to avoid doing it twice.
func FormatTitle(item tmdb.Item, mediaType MediaType, service Service, img ImageConfig, region string) Title {
	name := item.Name
	if name == "" {
		name = item.Title
	}

	imgURL := placeholderImageURL
	if item.PosterPath != "" {
		imgURL = img.BaseURL + img.PosterSize + item.PosterPath
	}

	if service == "" {
		service = ResolveService(item.WatchProviders, region)
	}

	return Title{
		ID:      item.ID,
		Title:   name,
		Img:     imgURL,
		Type:    mediaType,
		Service: service,
	}
}
