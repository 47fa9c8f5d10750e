package internal

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/centrifugal/centrifuge"
	json "github.com/goccy/go-json"
	"github.com/streamatch/backend/internal/cache"
	"github.com/streamatch/backend/internal/common"
	"github.com/streamatch/backend/pkg/tmdb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Stats represents live usage data broadcast to the front-end over the
// stats websocket channel.
type Stats struct {
	// SuggestionsServed is the number of suggestion titles delivered since startup.
	SuggestionsServed int `json:"suggestionsServed"`
	// CatalogFetches is the number of seed catalog pages served since startup.
	CatalogFetches int `json:"catalogFetches"`
	// TitleInstant holds the most recently suggested title for immediate broadcasting.
	TitleInstant string `json:"titleInstant"`
}

// SuggestionService defines the operations behind the StreaMatch API surface.
type SuggestionService interface {
	// Handler handles incoming HTTP requests via a websocket handler
	http.Handler
	// SeedTitles lists the catalog page the user picks liked titles from.
	SeedTitles(ctx context.Context, page int) ([]Title, error)
	// Suggest ranks and paginates recommendations for the selected seed titles.
	Suggest(ctx context.Context, selectedIDs, excludeIDs []int, page int) (*SuggestionsPage, error)
	// SuggestForWatched returns replacements related to a single watched title.
	SuggestForWatched(ctx context.Context, watchedID int, excludeIDs []int) ([]Title, error)
	// TitleDetails fetches the expanded record behind the details modal.
	TitleDetails(ctx context.Context, mediaType tmdb.MediaType, id int) (*TitleDetails, error)
	// BackgroundTitles fetches the trending feed shown behind the welcome screen.
	BackgroundTitles(ctx context.Context) ([]Title, error)
	// BroadcastStats updates and publishes statistical data to a websocket channel.
	// Accepts a function to modify stats and returns an error if updating or publishing fails.
	BroadcastStats(statsUpdater func(stats *Stats) error) error
}

type suggestionService struct {
	statsWebsocketChannel string
	provider              tmdb.Provider
	region                string
	pageSize              int
	img                   ImageConfig
	providerTimeout       time.Duration

	node             *centrifuge.Node
	websocketHandler *centrifuge.WebsocketHandler
	statsMutex       *sync.Mutex
	stats            Stats
}

// NewSuggestionService creates a new instance of SuggestionService with the
// provided metadata provider. img must be fully resolved before construction;
// it is never mutated afterwards.
func NewSuggestionService(statsWebsocketChannel string, provider tmdb.Provider, region string, pageSize int, img ImageConfig, providerTimeout time.Duration) (SuggestionService, error) {
	svc := &suggestionService{
		statsWebsocketChannel: statsWebsocketChannel,
		provider:              provider,
		region:                region,
		pageSize:              pageSize,
		img:                   img,
		providerTimeout:       providerTimeout,

		statsMutex: &sync.Mutex{},
	}

	node, err := centrifuge.New(centrifuge.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to centrifuge.New: %w", err)
	}
	svc.node = node

	node.OnConnecting(func(ctx context.Context, e centrifuge.ConnectEvent) (centrifuge.ConnectReply, error) {
		return centrifuge.ConnectReply{}, nil
	})

	node.OnConnect(func(client *centrifuge.Client) {
		client.OnSubscribe(func(e centrifuge.SubscribeEvent, cb centrifuge.SubscribeCallback) {
			if e.Channel != statsWebsocketChannel {
				cb(centrifuge.SubscribeReply{}, centrifuge.ErrorPermissionDenied)
				return
			}

			cb(centrifuge.SubscribeReply{
				Options: centrifuge.SubscribeOptions{},
			}, nil)

			go func() {
				err := svc.BroadcastStats(func(stats *Stats) error { return nil })
				if err != nil {
					common.Log.Warn("Failed to internal.SuggestionService.BroadcastStats", "err", err)
				}
			}()
		})
	})

	if err := node.Run(); err != nil {
		return nil, fmt.Errorf("failed to centrifuge.Node.Run: %w", err)
	}

	websocketHandler := centrifuge.NewWebsocketHandler(node, centrifuge.WebsocketConfig{
		ReadBufferSize:     1024,
		UseWriteBufferPool: true,
	})
	svc.websocketHandler = websocketHandler

	return svc, nil
}

// SeedTitles lists the catalog page the user picks liked titles from: the
// popularity-sorted feed of titles available on the supported services,
// enriched with each title's resolved service. Pages are memoized since the
// catalog changes slowly and enriching one costs a detail call per entry.
func (s *suggestionService) SeedTitles(ctx context.Context, page int) ([]Title, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.SeedTitles")
	defer span.End()
	span.SetAttributes(attribute.Int("catalog.page", page))

	cacheResult := "hit"
	cacheKey := fmt.Sprintf("catalog.titles : %s : %d", s.region, page)
	titles, err := cache.Memoize[[]Title](cacheKey, 6*time.Hour, func() (*[]Title, error) {

		cacheResult = "miss"
		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()

		feed, err := s.provider.DiscoverByService(callCtx, s.region, SupportedProviderIDs(), tmdb.SortPopularityDesc, page)
		if err != nil {
			common.ProviderCallsTotalIncr(ctx, "discover", "error")
			return nil, fmt.Errorf("failed to tmdb.Provider.DiscoverByService: %w", err)
		}
		common.ProviderCallsTotalIncr(ctx, "discover", "ok")

		enriched := make([]*Title, len(feed.Results))
		g := new(errgroup.Group)
		g.SetLimit(maxProviderConcurrency)
		for i, item := range feed.Results {
			g.Go(func() error {
				title, err := s.enrichTitle(ctx, item.ID)
				if err != nil {
					common.Log.WarnContext(ctx, "Skipping catalog title", "id", item.ID, "err", err)
					return nil
				}
				enriched[i] = title
				return nil
			})
		}
		_ = g.Wait()

		out := make([]Title, 0, len(enriched))
		for _, title := range enriched {
			if title == nil {
				continue
			}
			out = append(out, *title)
		}

		return &out, nil
	})
	common.CacheGetsTotalIncr(ctx, "catalog.titles", cacheResult)
	span.SetAttributes(attribute.String("cache.catalog.titles.result", cacheResult))
	if err != nil {
		return nil, err
	}

	go func() {
		err := s.BroadcastStats(func(stats *Stats) error {
			stats.CatalogFetches++
			return nil
		})
		if err != nil {
			common.Log.WarnContext(ctx, "Failed to internal.SuggestionService.BroadcastStats", "err", err)
		}
	}()

	return *titles, nil
}

// Suggest ranks and paginates recommendations for the selected seed titles.
// The exclusion set is caller-supplied on every request; there is no
// server-side session, so everything already shown must round-trip back here.
func (s *suggestionService) Suggest(ctx context.Context, selectedIDs, excludeIDs []int, page int) (*SuggestionsPage, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.Suggest")
	defer span.End()
	span.SetAttributes(attribute.Int("suggest.seeds", len(selectedIDs)))
	span.SetAttributes(attribute.Int("suggest.excluded", len(excludeIDs)))
	span.SetAttributes(attribute.Int("suggest.page", page))

	exclude := make(map[int]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = true
	}

	ranked := s.rankCandidates(ctx, selectedIDs, exclude, page)

	// seeds join the exclusion set for assembly so they never reach a page
	assembleExclude := make(map[int]bool, len(exclude)+len(selectedIDs))
	for id := range exclude {
		assembleExclude[id] = true
	}
	for _, id := range selectedIDs {
		assembleExclude[id] = true
	}

	assembled := s.assemblePage(ctx, ranked, assembleExclude, page, s.pageSize, true)

	if len(assembled.items) > 0 {
		instant := assembled.items[0].Title
		count := len(assembled.items)
		common.SuggestionsServedTotalIncr(ctx, count)
		go func() {
			err := s.BroadcastStats(func(stats *Stats) error {
				stats.SuggestionsServed += count
				stats.TitleInstant = instant
				return nil
			})
			if err != nil {
				common.Log.WarnContext(ctx, "Failed to internal.SuggestionService.BroadcastStats", "err", err)
			}
		}()
	}

	return &SuggestionsPage{
		Suggestions: assembled.items,
		HasMore:     assembled.hasMore,
		CurrentPage: page,
	}, nil
}

// SuggestForWatched returns titles related to a single watched title. Backfill
// is deliberately skipped: replacements for something just watched must stay
// tied to that title, not to whatever is popular.
func (s *suggestionService) SuggestForWatched(ctx context.Context, watchedID int, excludeIDs []int) ([]Title, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.SuggestForWatched")
	defer span.End()
	span.SetAttributes(attribute.Int("watched.id", watchedID))

	exclude := make(map[int]bool, len(excludeIDs)+1)
	for _, id := range excludeIDs {
		exclude[id] = true
	}

	ranked := s.rankCandidates(ctx, []int{watchedID}, exclude, 1)

	exclude[watchedID] = true
	assembled := s.assemblePage(ctx, ranked, exclude, 1, s.pageSize, false)

	return assembled.items, nil
}

// TitleDetails fetches the expanded record behind the details modal.
func (s *suggestionService) TitleDetails(ctx context.Context, mediaType tmdb.MediaType, id int) (*TitleDetails, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.TitleDetails")
	defer span.End()
	span.SetAttributes(attribute.String("details.media-type", string(mediaType)))
	span.SetAttributes(attribute.Int("details.id", id))

	details, err := s.titleDetails(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(details.Genres))
	for _, genre := range details.Genres {
		genres = append(genres, genre.Name)
	}

	cast := make([]string, 0, 5)
	if details.Credits != nil {
		for _, member := range details.Credits.Cast {
			cast = append(cast, member.Name)
			if len(cast) == 5 {
				break
			}
		}
	}

	var trailerKey string
	if details.Videos != nil {
		for _, video := range details.Videos.Results {
			if video.Site == "YouTube" && video.Type == "Trailer" {
				trailerKey = video.Key
				break
			}
		}
	}

	var backdropImg string
	if details.BackdropPath != "" {
		backdropImg = s.img.BaseURL + s.img.BackdropSize + details.BackdropPath
	}

	return &TitleDetails{
		Synopsis:    details.Overview,
		Genres:      genres,
		Cast:        cast,
		TrailerKey:  trailerKey,
		BackdropImg: backdropImg,
	}, nil
}

// BackgroundTitles fetches the trending feed shown behind the welcome screen.
// Trending payloads carry no availability data, so the service tag stays unknown;
// the welcome collage only needs poster art.
func (s *suggestionService) BackgroundTitles(ctx context.Context) ([]Title, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.SuggestionService.BackgroundTitles")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	feed, err := s.provider.TrendingWeekly(callCtx, 1)
	if err != nil {
		common.ProviderCallsTotalIncr(ctx, "trending", "error")
		return nil, fmt.Errorf("failed to tmdb.Provider.TrendingWeekly: %w", err)
	}
	common.ProviderCallsTotalIncr(ctx, "trending", "ok")

	titles := make([]Title, 0, len(feed.Results))
	for _, item := range feed.Results {
		titles = append(titles, FormatTitle(item, MediaTypeSeries, ServiceUnknown, s.img, s.region))
	}

	return titles, nil
}

// BroadcastStats updates and publishes statistical data to a websocket channel.
// Accepts a function to modify stats and returns an error if updating or publishing fails.
func (s *suggestionService) BroadcastStats(statsUpdater func(stats *Stats) error) error {
	stats, err := func() (Stats, error) {
		s.statsMutex.Lock()
		defer s.statsMutex.Unlock()
		err := statsUpdater(&s.stats)
		if err != nil {
			return Stats{}, err
		}
		return s.stats, nil
	}()
	if err != nil {
		return fmt.Errorf("failed to statsUpdater: %w", err)
	}

	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to json.Marshal: %w", err)
	}

	_, err = s.node.Publish(s.statsWebsocketChannel, b)
	if err != nil {
		return fmt.Errorf("failed to centrifuge.Node.Publish: %w", err)
	}

	return nil
}

// ServeHTTP handles incoming HTTP requests via a websocket handler
func (s *suggestionService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	newCtx := centrifuge.SetCredentials(ctx, &centrifuge.Credentials{})
	r = r.WithContext(newCtx)

	s.websocketHandler.ServeHTTP(w, r)
}
