package internal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/streamatch/backend/internal/common"
	"github.com/streamatch/backend/pkg/tmdb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// App represents the main application structure that holds the suggestion service
// and the credential state checked on every request.
type App struct {
	Service SuggestionService

	// credentialConfigured is false when no provider API key was supplied;
	// handlers then answer with a configuration error instead of calling out.
	credentialConfigured bool
}

// NewApp creates a new instance of the App struct.
func NewApp(service SuggestionService, credentialConfigured bool) (*App, error) {
	return &App{
		Service:              service,
		credentialConfigured: credentialConfigured,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// checkCredential enforces the configuration error contract: a missing
// provider credential is a server-side problem surfaced on every handler.
func (a *App) checkCredential(w http.ResponseWriter, r *http.Request) bool {
	if a.credentialConfigured {
		return true
	}
	common.Log.ErrorContext(r.Context(), "Provider API key is not configured")
	writeError(w, http.StatusInternalServerError, "serviço mal configurado: credencial do provedor ausente")
	return false
}

// upstreamStatus maps a provider failure on a singular, required call to the
// user-visible status: 404 for a missing record, 503 for everything else.
func upstreamStatus(err error) int {
	if errors.Is(err, tmdb.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusServiceUnavailable
}

/*
HealthHandler answers liveness probes from the hosting platform.
*/
func (a *App) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

/*
TitlesHandler serves the seed selection catalog.

Method: GET. URL: /api/titles?page=N. Response: {"titles": Title[]}.
*/
func (a *App) TitlesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	common.Log.DebugContext(ctx, "TitlesHandler")

	if !a.checkCredential(w, r) {
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	span.SetAttributes(attribute.Int("param.page", page))

	titles, err := a.Service.SeedTitles(ctx, page)
	if err != nil {
		common.Log.ErrorContext(ctx, "Failed to SuggestionService.SeedTitles", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusServiceUnavailable, "não foi possível carregar o catálogo de títulos")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]Title{"titles": titles})
}

type suggestionsRequest struct {
	SelectedIDs []int `json:"selected_ids"`
	ExcludeIDs  []int `json:"exclude_ids"`
	Page        int   `json:"page"`
}

/*
SuggestionsHandler ranks and paginates recommendations for the user's selection.

Method: POST. URL: /api/suggestions.
Body: {"selected_ids": [...], "exclude_ids": [...], "page": N}.
Response: {"suggestions": Title[], "has_more": bool, "current_page": N}.
*/
func (a *App) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	common.Log.DebugContext(ctx, "SuggestionsHandler")

	if !a.checkCredential(w, r) {
		return
	}

	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.Log.WarnContext(ctx, "Failed to json.Decoder.Decode", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := common.ValidateSelectedIDs(req.SelectedIDs); err != nil {
		common.Log.WarnContext(ctx, "Failed to common.ValidateSelectedIDs", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "o campo 'selected_ids' é obrigatório")
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	span.SetAttributes(attribute.Int("param.page", req.Page))
	span.SetAttributes(attribute.Int("param.selected", len(req.SelectedIDs)))

	page, err := a.Service.Suggest(ctx, req.SelectedIDs, req.ExcludeIDs, req.Page)
	if err != nil {
		common.Log.ErrorContext(ctx, "Failed to SuggestionService.Suggest", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusServiceUnavailable, "não foi possível gerar sugestões")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

type watchedRequest struct {
	ExcludeIDs []int `json:"exclude_ids"`
}

/*
WatchedHandler returns replacement suggestions related to a single watched title.

Method: POST. URL: /api/watched/{watchedId}. Body: {"exclude_ids": [...]}.
Response: Title[].
*/
func (a *App) WatchedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	common.Log.DebugContext(ctx, "WatchedHandler")

	watchedID, err := common.ParseTitleID(chi.URLParam(r, "watchedId"))
	if err != nil {
		common.Log.WarnContext(ctx, "Failed to common.ParseTitleID", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "identificador de título inválido")
		return
	}
	span.SetAttributes(attribute.Int("param.watched-id", watchedID))

	if !a.checkCredential(w, r) {
		return
	}

	var req watchedRequest
	if r.Body != nil {
		// body is optional; a missing exclusion set means nothing to skip
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	titles, err := a.Service.SuggestForWatched(ctx, watchedID, req.ExcludeIDs)
	if err != nil {
		common.Log.ErrorContext(ctx, "Failed to SuggestionService.SuggestForWatched", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusServiceUnavailable, "não foi possível gerar sugestões")
		return
	}

	writeJSON(w, http.StatusOK, titles)
}

/*
DetailsHandler serves the expanded record behind the details modal.

Method: GET. URL: /api/details/{mediaType}/{id} with mediaType in {tv, movie}.
Response: {"synopsis", "genres", "cast", "trailer_key"?, "backdrop_img"?}.
*/
func (a *App) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	common.Log.DebugContext(ctx, "DetailsHandler")

	mediaType := chi.URLParam(r, "mediaType")
	if err := common.ValidateMediaType(mediaType); err != nil {
		common.Log.WarnContext(ctx, "Failed to common.ValidateMediaType", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "tipo de mídia inválido, use tv ou movie")
		return
	}
	span.SetAttributes(attribute.String("param.media-type", mediaType))

	id, err := common.ParseTitleID(chi.URLParam(r, "id"))
	if err != nil {
		common.Log.WarnContext(ctx, "Failed to common.ParseTitleID", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusBadRequest, "identificador de título inválido")
		return
	}
	span.SetAttributes(attribute.Int("param.id", id))

	if !a.checkCredential(w, r) {
		return
	}

	details, err := a.Service.TitleDetails(ctx, tmdb.MediaType(mediaType), id)
	if err != nil {
		common.Log.ErrorContext(ctx, "Failed to SuggestionService.TitleDetails", "err", err)
		span.RecordError(err)
		status := upstreamStatus(err)
		if status == http.StatusNotFound {
			writeError(w, status, "título não encontrado")
		} else {
			writeError(w, status, "não foi possível carregar os detalhes")
		}
		return
	}

	writeJSON(w, http.StatusOK, details)
}

/*
BackgroundTitlesHandler serves the trending collage behind the welcome screen.

Method: GET. URL: /api/background-titles. Response: {"titles": Title[]}.
*/
func (a *App) BackgroundTitlesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	common.Log.DebugContext(ctx, "BackgroundTitlesHandler")

	if !a.checkCredential(w, r) {
		return
	}

	titles, err := a.Service.BackgroundTitles(ctx)
	if err != nil {
		common.Log.ErrorContext(ctx, "Failed to SuggestionService.BackgroundTitles", "err", err)
		span.RecordError(err)
		writeError(w, http.StatusServiceUnavailable, "não foi possível carregar os títulos em destaque")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]Title{"titles": titles})
}

// WebsocketHandler handles WebSocket connections for the live stats channel
func (a *App) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	common.Log.DebugContext(ctx, "WebsocketHandler")

	a.Service.ServeHTTP(w, r)
}
