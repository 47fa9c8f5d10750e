package internal

import (
	"sort"
	"testing"

	"github.com/streamatch/backend/pkg/tmdb"
	"github.com/stretchr/testify/assert"
)

func TestResolveService(t *testing.T) {
	tests := []struct {
		name      string
		providers *tmdb.WatchProviders
		want      Service
	}{
		{
			name:      "nil availability block",
			providers: nil,
			want:      ServiceUnknown,
		},
		{
			name:      "region absent",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{"US": {Flatrate: []tmdb.ProviderOffer{{ProviderID: 8}}}}},
			want:      ServiceUnknown,
		},
		{
			name:      "empty subscription list",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{"BR": {}}},
			want:      ServiceUnknown,
		},
		{
			name: "rent only is not a subscription",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{
				"BR": {Rent: []tmdb.ProviderOffer{{ProviderID: 8}}},
			}},
			want: ServiceUnknown,
		},
		{
			name: "no supported entry",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{
				"BR": {Flatrate: []tmdb.ProviderOffer{{ProviderID: 43}, {ProviderID: 531}}},
			}},
			want: ServiceUnknown,
		},
		{
			name: "first supported entry wins in upstream order",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{
				"BR": {Flatrate: []tmdb.ProviderOffer{{ProviderID: 43}, {ProviderID: 119}, {ProviderID: 8}}},
			}},
			want: ServicePrime,
		},
		{
			name: "netflix",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{
				"BR": {Flatrate: []tmdb.ProviderOffer{{ProviderID: 8}}},
			}},
			want: ServiceNetflix,
		},
		{
			name: "globoplay",
			providers: &tmdb.WatchProviders{Results: map[string]tmdb.RegionOffers{
				"BR": {Flatrate: []tmdb.ProviderOffer{{ProviderID: 307}}},
			}},
			want: ServiceGloboplay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveService(tt.providers, "BR"))
		})
	}
}

func TestSupportedProviderIDs(t *testing.T) {
	ids := SupportedProviderIDs()

	assert.Len(t, ids, 6)
	assert.True(t, sort.IntsAreSorted(ids))
	assert.Contains(t, ids, 8)
	assert.Contains(t, ids, 1899)
}
