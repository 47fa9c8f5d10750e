package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/streamatch/backend/pkg/transport"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when TMDB has no record for the requested title.
var ErrNotFound = errors.New("title not found")

// StatusError is returned when TMDB answers with an unexpected HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb responded with status %d", e.Code)
}

// Provider defines the methods to interact with the TMDB service.
type Provider interface {
	// DiscoverByService lists titles available on the given watch providers in a region,
	// ordered by sortBy.
	DiscoverByService(ctx context.Context, region string, providerIDs []int, sortBy string, page int) (*Page, error)
	// RecommendationsFor fetches the recommendation list for a title.
	RecommendationsFor(ctx context.Context, mediaType MediaType, id int, page int) (*Page, error)
	// DetailsFor fetches the full record of a title, appending the given extras
	// in the same request.
	DetailsFor(ctx context.Context, mediaType MediaType, id int, extras ...string) (*Details, error)
	// TrendingWeekly fetches the weekly trending series feed.
	TrendingWeekly(ctx context.Context, page int) (*Page, error)
	// ImageConfiguration fetches the image base URL and available sizes.
	ImageConfiguration(ctx context.Context) (*ImagesConfiguration, error)
}

type httpProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	language   string
}

// NewProvider creates a new instance of the TMDB Provider.
// Requests are localized to pt-BR and rate limited below the TMDB per-IP cap.
func NewProvider(apiKey string) Provider {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100

	rt := transport.NewModifyHeadersRoundTripper(t,
		transport.WithAccept("application/json"),
		transport.WithAcceptLanguage("pt-BR,pt;q=0.9,en;q=0.8"),
		transport.WithUserAgent("streamatch-backend/0.1"),
	)

	return &httpProvider{
		httpClient: &http.Client{
			Timeout:   time.Second * 10,
			Transport: rt,
		},
		limiter:  rate.NewLimiter(rate.Limit(40), 40),
		baseURL:  "https://api.themoviedb.org/3",
		apiKey:   apiKey,
		language: "pt-BR",
	}
}

// DiscoverByService lists titles available on the given watch providers in a region, ordered by sortBy.
func (p *httpProvider) DiscoverByService(ctx context.Context, region string, providerIDs []int, sortBy string, page int) (*Page, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "tmdb.Provider.DiscoverByService")
	defer span.End()

	ids := make([]string, 0, len(providerIDs))
	for _, id := range providerIDs {
		ids = append(ids, strconv.Itoa(id))
	}

	q := url.Values{}
	q.Set("watch_region", region)
	// pipe-joined means "available on any of these"
	q.Set("with_watch_providers", strings.Join(ids, "|"))
	q.Set("with_watch_monetization_types", "flatrate")
	q.Set("sort_by", sortBy)
	q.Set("page", strconv.Itoa(page))

	result := &Page{}
	if err := p.get(ctx, "/discover/tv", q, result); err != nil {
		return nil, fmt.Errorf("failed to get /discover/tv: %w", err)
	}

	return result, nil
}

// RecommendationsFor fetches the recommendation list for a title.
func (p *httpProvider) RecommendationsFor(ctx context.Context, mediaType MediaType, id int, page int) (*Page, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "tmdb.Provider.RecommendationsFor")
	defer span.End()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	result := &Page{}
	path := fmt.Sprintf("/%s/%d/recommendations", mediaType, id)
	if err := p.get(ctx, path, q, result); err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", path, err)
	}

	return result, nil
}

// DetailsFor fetches the full record of a title, appending the given extras in the same request.
func (p *httpProvider) DetailsFor(ctx context.Context, mediaType MediaType, id int, extras ...string) (*Details, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "tmdb.Provider.DetailsFor")
	defer span.End()

	q := url.Values{}
	if len(extras) > 0 {
		q.Set("append_to_response", strings.Join(extras, ","))
	}

	result := &Details{}
	path := fmt.Sprintf("/%s/%d", mediaType, id)
	if err := p.get(ctx, path, q, result); err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", path, err)
	}

	return result, nil
}

// TrendingWeekly fetches the weekly trending series feed.
func (p *httpProvider) TrendingWeekly(ctx context.Context, page int) (*Page, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "tmdb.Provider.TrendingWeekly")
	defer span.End()

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	result := &Page{}
	if err := p.get(ctx, "/trending/tv/week", q, result); err != nil {
		return nil, fmt.Errorf("failed to get /trending/tv/week: %w", err)
	}

	return result, nil
}

// ImageConfiguration fetches the image base URL and available sizes.
func (p *httpProvider) ImageConfiguration(ctx context.Context) (*ImagesConfiguration, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "tmdb.Provider.ImageConfiguration")
	defer span.End()

	result := &ImagesConfiguration{}
	if err := p.get(ctx, "/configuration", url.Values{}, result); err != nil {
		return nil, fmt.Errorf("failed to get /configuration: %w", err)
	}

	return result, nil
}

func (p *httpProvider) get(ctx context.Context, path string, query url.Values, out any) error {

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to rate.Limiter.Wait: %w", err)
	}

	query.Set("api_key", p.apiKey)
	query.Set("language", p.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to http.NewRequestWithContext: %w", err)
	}

	res, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to http.Client.Do: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode != http.StatusOK:
		return &StatusError{Code: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to json.Decoder.Decode: %w", err)
	}

	return nil
}
