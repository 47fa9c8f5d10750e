package internal

import (
	"context"
	"sort"

	"github.com/streamatch/backend/internal/common"
	"github.com/streamatch/backend/pkg/tmdb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// seedFetch is the outcome of one seed's recommendation fetch. Failed seeds
// carry their error so the tally loop can skip them without aborting the ranking.
type seedFetch struct {
	seedID int
	items  []tmdb.Item
	err    error
}

/*
rankCandidates fetches the recommendation list of every seed and produces a
frequency-ranked candidate ID sequence.

Every occurrence of a candidate increments its tally, including duplicate
occurrences within a single seed's list. Seeds and excluded IDs never enter
the tally. Ties in tally count are broken by ascending candidate ID so that
repeated calls with identical inputs paginate reproducibly.

providerPage is passed through to the upstream recommendation fetch; it
advances the seeds' own pagination, not the local slicing.
*/
func (s *suggestionService) rankCandidates(ctx context.Context, seedIDs []int, exclude map[int]bool, providerPage int) []int {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.rankCandidates")
	defer span.End()

	seeds := make(map[int]bool, len(seedIDs))
	for _, id := range seedIDs {
		seeds[id] = true
	}

	// fan-out, one fetch per seed; the tally only starts after every fetch settled
	fetches := make([]seedFetch, len(seedIDs))
	g := new(errgroup.Group)
	g.SetLimit(maxProviderConcurrency)
	for i, seedID := range seedIDs {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()

			page, err := s.provider.RecommendationsFor(callCtx, tmdb.MediaTypeTV, seedID, providerPage)
			if err != nil {
				common.ProviderCallsTotalIncr(ctx, "recommendations", "error")
				fetches[i] = seedFetch{seedID: seedID, err: err}
				return nil
			}
			common.ProviderCallsTotalIncr(ctx, "recommendations", "ok")
			fetches[i] = seedFetch{seedID: seedID, items: page.Results}
			return nil
		})
	}
	_ = g.Wait()

	tally := make(map[int]int)
	for _, fetch := range fetches {
		if fetch.err != nil {
			common.Log.WarnContext(ctx, "Skipping seed recommendations", "seed", fetch.seedID, "err", fetch.err)
			continue
		}
		for _, item := range fetch.items {
			if seeds[item.ID] || exclude[item.ID] {
				continue
			}
			tally[item.ID]++
		}
	}

	ranked := make([]int, 0, len(tally))
	for id := range tally {
		ranked = append(ranked, id)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if tally[ranked[i]] != tally[ranked[j]] {
			return tally[ranked[i]] > tally[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	span.SetAttributes(attribute.Int("rank.seeds", len(seedIDs)))
	span.SetAttributes(attribute.Int("rank.candidates", len(ranked)))

	return ranked
}
