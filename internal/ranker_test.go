package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/streamatch/backend/pkg/tmdb"
	"github.com/stretchr/testify/assert"
)

func TestRankCandidates(t *testing.T) {
	t.Run("frequency rank with ascending id tie break", func(t *testing.T) {
		provider := &mockProvider{
			recommendationsFunc: func(_ context.Context, _ tmdb.MediaType, id int, _ int) (*tmdb.Page, error) {
				switch id {
				case 1:
					return &tmdb.Page{Results: itemsFromIDs(10, 20)}, nil
				case 2:
					return &tmdb.Page{Results: itemsFromIDs(20, 30)}, nil
				}
				return nil, errors.New("unexpected seed")
			},
		}
		s := newTestService(t, provider, 10)

		ranked := s.rankCandidates(context.Background(), []int{1, 2}, map[int]bool{}, 1)

		// 20 tallies twice; 10 and 30 tie at one and break by ascending id
		assert.Equal(t, []int{20, 10, 30}, ranked)
	})

	t.Run("duplicates within a single seed list all count", func(t *testing.T) {
		provider := &mockProvider{
			recommendationsFunc: func(_ context.Context, _ tmdb.MediaType, id int, _ int) (*tmdb.Page, error) {
				if id == 1 {
					return &tmdb.Page{Results: itemsFromIDs(10, 10, 20)}, nil
				}
				return &tmdb.Page{Results: itemsFromIDs(20)}, nil
			},
		}
		s := newTestService(t, provider, 10)

		ranked := s.rankCandidates(context.Background(), []int{1, 2}, map[int]bool{}, 1)

		// 10 tallies twice from seed 1's list alone, 20 tallies twice across
		// seeds; tied at two, ascending id puts 10 first
		assert.Equal(t, []int{10, 20}, ranked)
	})

	t.Run("seeds and excluded ids never enter the tally", func(t *testing.T) {
		provider := &mockProvider{
			recommendationsFunc: func(_ context.Context, _ tmdb.MediaType, id int, _ int) (*tmdb.Page, error) {
				return &tmdb.Page{Results: itemsFromIDs(1, 2, 50, 60)}, nil
			},
		}
		s := newTestService(t, provider, 10)

		ranked := s.rankCandidates(context.Background(), []int{1, 2}, map[int]bool{60: true}, 1)

		assert.Equal(t, []int{50}, ranked)
	})

	t.Run("failed seed is skipped, remaining seeds still rank", func(t *testing.T) {
		provider := &mockProvider{
			recommendationsFunc: func(_ context.Context, _ tmdb.MediaType, id int, _ int) (*tmdb.Page, error) {
				if id == 1 {
					return nil, errors.New("provider blew up")
				}
				return &tmdb.Page{Results: itemsFromIDs(30, 40)}, nil
			},
		}
		s := newTestService(t, provider, 10)

		ranked := s.rankCandidates(context.Background(), []int{1, 2}, map[int]bool{}, 1)

		assert.Equal(t, []int{30, 40}, ranked)
	})

	t.Run("all seeds failing yields an empty sequence", func(t *testing.T) {
		provider := &mockProvider{
			recommendationsFunc: func(_ context.Context, _ tmdb.MediaType, _ int, _ int) (*tmdb.Page, error) {
				return nil, errors.New("provider down")
			},
		}
		s := newTestService(t, provider, 10)

		ranked := s.rankCandidates(context.Background(), []int{1, 2, 3}, map[int]bool{}, 1)

		assert.Empty(t, ranked)
	})

	t.Run("provider page is passed through upstream", func(t *testing.T) {
		var gotPage int
		provider := &mockProvider{
			recommendationsFunc: func(_ context.Context, _ tmdb.MediaType, _ int, page int) (*tmdb.Page, error) {
				gotPage = page
				return &tmdb.Page{}, nil
			},
		}
		s := newTestService(t, provider, 10)

		_ = s.rankCandidates(context.Background(), []int{1}, map[int]bool{}, 3)

		assert.Equal(t, 3, gotPage)
	})
}
