package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/streamatch/backend/internal/cache"
	"github.com/streamatch/backend/internal/common"
	"github.com/streamatch/backend/pkg/tmdb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// maxProviderConcurrency bounds the outbound fan-out per request.
const maxProviderConcurrency = 5

// errNoSupportedService marks a candidate that cannot be attributed to a
// supported streaming service. Such candidates are dropped without counting
// toward the page quota.
var errNoSupportedService = errors.New("title not available on a supported service")

type assembledPage struct {
	items   []Title
	hasMore bool
}

/*
assemblePage slices the ranked candidate sequence into one page of enriched titles.

The page is not a fixed-offset slice of the ranked sequence: it takes the
first pageSize ranked IDs not present in exclude, because the caller's
exclusion set grows across calls and a later "page 2" must skip everything
already seen. Candidates whose detail fetch fails or whose service cannot be
resolved are dropped and, when allowBackfill is set, their slots are refilled
from the popularity-sorted discovery feed.
*/
func (s *suggestionService) assemblePage(ctx context.Context, ranked []int, exclude map[int]bool, providerPage, pageSize int, allowBackfill bool) assembledPage {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.assemblePage")
	defer span.End()

	candidates := make([]int, 0, pageSize)
	for _, id := range ranked {
		if exclude[id] {
			continue
		}
		candidates = append(candidates, id)
		if len(candidates) == pageSize {
			break
		}
	}

	// enrich concurrently, keeping ranked order
	enriched := make([]*Title, len(candidates))
	g := new(errgroup.Group)
	g.SetLimit(maxProviderConcurrency)
	for i, id := range candidates {
		g.Go(func() error {
			title, err := s.enrichTitle(ctx, id)
			if err != nil {
				common.Log.WarnContext(ctx, "Skipping candidate", "id", id, "err", err)
				return nil
			}
			enriched[i] = title
			return nil
		})
	}
	_ = g.Wait()

	processed := make(map[int]bool, len(candidates))
	items := make([]Title, 0, pageSize)
	for i, id := range candidates {
		processed[id] = true
		if enriched[i] == nil {
			continue
		}
		items = append(items, *enriched[i])
	}

	if allowBackfill && len(items) < pageSize {
		items = s.backfill(ctx, items, exclude, processed, providerPage, pageSize)
	}

	span.SetAttributes(attribute.Int("page.candidates", len(candidates)))
	span.SetAttributes(attribute.Int("page.items", len(items)))

	return assembledPage{
		items:   items,
		hasMore: len(items) == pageSize,
	}
}

// backfill walks the popularity-sorted discovery feed and appends titles until
// the page quota is met or the feed is exhausted. IDs already excluded,
// already processed or already on the page are skipped. Best effort: a feed
// failure returns the page as collected so far.
func (s *suggestionService) backfill(ctx context.Context, items []Title, exclude, processed map[int]bool, providerPage, pageSize int) []Title {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.backfill")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	feed, err := s.provider.DiscoverByService(callCtx, s.region, SupportedProviderIDs(), tmdb.SortPopularityDesc, providerPage)
	if err != nil {
		common.ProviderCallsTotalIncr(ctx, "discover", "error")
		common.Log.WarnContext(ctx, "Backfill feed unavailable, returning partial page", "err", err)
		span.RecordError(err)
		return items
	}
	common.ProviderCallsTotalIncr(ctx, "discover", "ok")

	inPage := make(map[int]bool, len(items))
	for _, title := range items {
		inPage[title.ID] = true
	}

	for _, item := range feed.Results {
		if len(items) >= pageSize {
			break
		}
		if exclude[item.ID] || processed[item.ID] || inPage[item.ID] {
			continue
		}
		processed[item.ID] = true

		title, err := s.enrichTitle(ctx, item.ID)
		if err != nil {
			common.Log.WarnContext(ctx, "Skipping backfill title", "id", item.ID, "err", err)
			continue
		}

		items = append(items, *title)
		inPage[title.ID] = true
	}

	return items
}

// enrichTitle resolves a candidate ID to a fully formatted Title. Detail
// lookups are memoized; service resolution happens here once and is passed
// through to the formatter.
func (s *suggestionService) enrichTitle(ctx context.Context, id int) (*Title, error) {

	details, err := s.titleDetails(ctx, tmdb.MediaTypeTV, id)
	if err != nil {
		return nil, err
	}

	service := ResolveService(details.WatchProviders, s.region)
	if service == ServiceUnknown {
		return nil, errNoSupportedService
	}

	title := FormatTitle(details.Item, MediaTypeSeries, service, s.img, s.region)
	return &title, nil
}

// titleDetails fetches the full record of a title through the cache.
func (s *suggestionService) titleDetails(ctx context.Context, mediaType tmdb.MediaType, id int) (*tmdb.Details, error) {

	cacheResult := "hit"
	cacheKey := fmt.Sprintf("tmdb.details : %s : %d", mediaType, id)
	details, err := cache.Memoize[tmdb.Details](cacheKey, 24*time.Hour, func() (*tmdb.Details, error) {

		cacheResult = "miss"
		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()

		details, err := s.provider.DetailsFor(callCtx, mediaType, id,
			tmdb.ExtraCredits, tmdb.ExtraVideos, tmdb.ExtraWatchProviders, tmdb.ExtraKeywords)
		if err != nil {
			common.ProviderCallsTotalIncr(ctx, "details", "error")
			return nil, fmt.Errorf("failed to tmdb.Provider.DetailsFor: %w", err)
		}
		common.ProviderCallsTotalIncr(ctx, "details", "ok")

		return details, nil
	})
	common.CacheGetsTotalIncr(ctx, "tmdb.details", cacheResult)
	if err != nil {
		return nil, err
	}

	return details, nil
}
