package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streamatch/backend/pkg/tmdb"
	"github.com/stretchr/testify/require"
)

// mockProvider implements tmdb.Provider with overridable function fields.
type mockProvider struct {
	discoverFunc        func(ctx context.Context, region string, providerIDs []int, sortBy string, page int) (*tmdb.Page, error)
	recommendationsFunc func(ctx context.Context, mediaType tmdb.MediaType, id int, page int) (*tmdb.Page, error)
	detailsFunc         func(ctx context.Context, mediaType tmdb.MediaType, id int, extras ...string) (*tmdb.Details, error)
	trendingFunc        func(ctx context.Context, page int) (*tmdb.Page, error)
	imageConfigFunc     func(ctx context.Context) (*tmdb.ImagesConfiguration, error)
}

var errMockNotWired = errors.New("mock method not wired")

func (m *mockProvider) DiscoverByService(ctx context.Context, region string, providerIDs []int, sortBy string, page int) (*tmdb.Page, error) {
	if m.discoverFunc == nil {
		return nil, errMockNotWired
	}
	return m.discoverFunc(ctx, region, providerIDs, sortBy, page)
}

func (m *mockProvider) RecommendationsFor(ctx context.Context, mediaType tmdb.MediaType, id int, page int) (*tmdb.Page, error) {
	if m.recommendationsFunc == nil {
		return nil, errMockNotWired
	}
	return m.recommendationsFunc(ctx, mediaType, id, page)
}

func (m *mockProvider) DetailsFor(ctx context.Context, mediaType tmdb.MediaType, id int, extras ...string) (*tmdb.Details, error) {
	if m.detailsFunc == nil {
		return nil, errMockNotWired
	}
	return m.detailsFunc(ctx, mediaType, id, extras...)
}

func (m *mockProvider) TrendingWeekly(ctx context.Context, page int) (*tmdb.Page, error) {
	if m.trendingFunc == nil {
		return nil, errMockNotWired
	}
	return m.trendingFunc(ctx, page)
}

func (m *mockProvider) ImageConfiguration(ctx context.Context) (*tmdb.ImagesConfiguration, error) {
	if m.imageConfigFunc == nil {
		return nil, errMockNotWired
	}
	return m.imageConfigFunc(ctx)
}

func newTestService(t *testing.T, provider tmdb.Provider, pageSize int) *suggestionService {
	t.Helper()
	svc, err := NewSuggestionService("stats", provider, "BR", pageSize, DefaultImageConfig(), time.Second)
	require.NoError(t, err)
	return svc.(*suggestionService)
}

// itemsFromIDs builds a recommendation list payload out of bare IDs.
func itemsFromIDs(ids ...int) []tmdb.Item {
	items := make([]tmdb.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, tmdb.Item{ID: id, Name: "Título"})
	}
	return items
}

// detailsOn builds a details payload available on the given provider in BR.
func detailsOn(id int, name string, providerID int) *tmdb.Details {
	return &tmdb.Details{
		Item: tmdb.Item{
			ID:         id,
			Name:       name,
			PosterPath: "/poster.jpg",
			WatchProviders: &tmdb.WatchProviders{
				Results: map[string]tmdb.RegionOffers{
					"BR": {Flatrate: []tmdb.ProviderOffer{{ProviderID: providerID, ProviderName: "svc"}}},
				},
			},
		},
	}
}

// detailsUnavailable builds a details payload with no BR availability.
func detailsUnavailable(id int, name string) *tmdb.Details {
	return &tmdb.Details{
		Item: tmdb.Item{ID: id, Name: name, PosterPath: "/poster.jpg"},
	}
}
