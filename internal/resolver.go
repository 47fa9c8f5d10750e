package internal

import (
	"sort"

	"github.com/streamatch/backend/pkg/tmdb"
)

// serviceByProviderID maps TMDB watch-provider IDs to the canonical service
// tags the front-end understands. Only subscription catalogs available in the
// target market are covered.
var serviceByProviderID = map[int]Service{
	8:    ServiceNetflix,
	119:  ServicePrime,
	337:  ServiceDisney,
	1899: ServiceMax,
	350:  ServiceApple,
	307:  ServiceGloboplay,
}

// SupportedProviderIDs returns the watch-provider IDs of every supported
// service, in ascending order.
func SupportedProviderIDs() []int {
	ids := make([]int, 0, len(serviceByProviderID))
	for id := range serviceByProviderID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ResolveService maps a title's availability block to a canonical service tag.
// It scans the region's subscription offerings in the order the provider
// returned them and picks the first supported entry. Absence of data at any
// level is a normal outcome and yields ServiceUnknown; no error is ever raised.
func ResolveService(providers *tmdb.WatchProviders, region string) Service {
	if providers == nil {
		return ServiceUnknown
	}

	offers, ok := providers.Results[region]
	if !ok {
		return ServiceUnknown
	}

	for _, offer := range offers.Flatrate {
		if service, ok := serviceByProviderID[offer.ProviderID]; ok {
			return service
		}
	}

	return ServiceUnknown
}
