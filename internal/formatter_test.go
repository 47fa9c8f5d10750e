package internal

import (
	"testing"

	"github.com/streamatch/backend/pkg/tmdb"
	"github.com/stretchr/testify/assert"
)

func TestFormatTitle(t *testing.T) {
	img := ImageConfig{BaseURL: "https://image.tmdb.org/t/p/", PosterSize: "w500", BackdropSize: "w1280"}

	t.Run("series name takes priority", func(t *testing.T) {
		got := FormatTitle(tmdb.Item{ID: 1396, Name: "Breaking Bad", Title: "ignored", PosterPath: "/bb.jpg"}, MediaTypeSeries, ServiceNetflix, img, "BR")

		assert.Equal(t, 1396, got.ID)
		assert.Equal(t, "Breaking Bad", got.Title)
		assert.Equal(t, "https://image.tmdb.org/t/p/w500/bb.jpg", got.Img)
		assert.Equal(t, MediaTypeSeries, got.Type)
		assert.Equal(t, ServiceNetflix, got.Service)
	})

	t.Run("movie title fallback", func(t *testing.T) {
		got := FormatTitle(tmdb.Item{ID: 238, Title: "O Poderoso Chefão"}, MediaTypeMovie, ServicePrime, img, "BR")

		assert.Equal(t, "O Poderoso Chefão", got.Title)
		assert.Equal(t, MediaTypeMovie, got.Type)
	})

	t.Run("placeholder when poster is missing", func(t *testing.T) {
		got := FormatTitle(tmdb.Item{ID: 7, Name: "Sem Pôster"}, MediaTypeSeries, ServiceMax, img, "BR")

		assert.Equal(t, placeholderImageURL, got.Img)
	})

	t.Run("service resolved from embedded availability when no override", func(t *testing.T) {
		item := tmdb.Item{
			ID:   42,
			Name: "Com Provedor",
			WatchProviders: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{
				"BR": {Flatrate: []tmdb.ProviderOffer{{ProviderID: 337}}},
			}},
		}
		got := FormatTitle(item, MediaTypeSeries, "", img, "BR")

		assert.Equal(t, ServiceDisney, got.Service)
	})

	t.Run("no availability and no override yields unknown", func(t *testing.T) {
		got := FormatTitle(tmdb.Item{ID: 43, Name: "Sem Provedor"}, MediaTypeSeries, "", img, "BR")

		assert.Equal(t, ServiceUnknown, got.Service)
	})
}

func TestImageConfigFromProvider(t *testing.T) {
	t.Run("nil keeps defaults", func(t *testing.T) {
		assert.Equal(t, DefaultImageConfig(), ImageConfigFromProvider(nil))
	})

	t.Run("preferred sizes picked when available", func(t *testing.T) {
		ic := &tmdb.ImagesConfiguration{}
		ic.Images.SecureBaseURL = "https://cdn.example/t/p/"
		ic.Images.PosterSizes = []string{"w92", "w500", "original"}
		ic.Images.BackdropSizes = []string{"w300", "w1280", "original"}

		got := ImageConfigFromProvider(ic)
		assert.Equal(t, "https://cdn.example/t/p/", got.BaseURL)
		assert.Equal(t, "w500", got.PosterSize)
		assert.Equal(t, "w1280", got.BackdropSize)
	})

	t.Run("falls back to the largest size offered", func(t *testing.T) {
		ic := &tmdb.ImagesConfiguration{}
		ic.Images.SecureBaseURL = "https://cdn.example/t/p/"
		ic.Images.PosterSizes = []string{"w92", "w342"}

		got := ImageConfigFromProvider(ic)
		assert.Equal(t, "w342", got.PosterSize)
		assert.Equal(t, "w1280", got.BackdropSize)
	})
}
