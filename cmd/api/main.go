package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	slogchi "github.com/samber/slog-chi"
	"github.com/streamatch/backend/internal"
	"github.com/streamatch/backend/internal/cache"
	"github.com/streamatch/backend/internal/common"
	"github.com/streamatch/backend/internal/config"
	"github.com/streamatch/backend/pkg/tmdb"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to config.Load:", err)
	}

	loggerShutdown, err := common.InitLogger(cfg.ServiceName, cfg.ServiceVersion, cfg.ServiceEnvironment, cfg.OTELExporterEndpoint)
	if err != nil {
		log.Fatal("Failed to common.InitLogger:", err)
	}

	instrumentationShutdown, err := common.InitInstrumentation(cfg.ServiceName, cfg.ServiceVersion, cfg.ServiceEnvironment, cfg.OTELExporterEndpoint)
	if err != nil {
		log.Fatal("Failed to common.InitInstrumentation:", err)
	}

	if err := cache.Open(cfg.CachePath); err != nil {
		log.Fatal("Failed to cache.Open:", err)
	}

	if cfg.TMDBAPIKey == "" {
		common.Log.Warn("TMDB_API_KEY is not set, requests will be rejected until one is provided")
	}

	provider := tmdb.NewProvider(cfg.TMDBAPIKey)

	// one-time image configuration lookup; a failure keeps the hardcoded defaults
	img := internal.DefaultImageConfig()
	if cfg.TMDBAPIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if ic, err := provider.ImageConfiguration(ctx); err != nil {
			common.Log.Warn("Failed to tmdb.Provider.ImageConfiguration, keeping defaults", "err", err)
		} else {
			img = internal.ImageConfigFromProvider(ic)
		}
		cancel()
	}

	service, err := internal.NewSuggestionService(cfg.StatsWebsocketChannel, provider, cfg.WatchRegion, cfg.SuggestionsPageSize, img, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal("Failed to internal.NewSuggestionService:", err)
	}

	app, err := internal.NewApp(service, cfg.TMDBAPIKey != "")
	if err != nil {
		log.Fatal("Failed to internal.NewApp:", err)
	}

	r := chi.NewRouter()
	r.Use(slogchi.New(common.Log))
	r.Use(httprate.LimitByIP(120, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
			"Accept",
			"Accept-Language",
			"Accept-Encoding",
			"Content-Language",
			"Origin",
		},
		MaxAge: 300,
	}))
	r.Get("/healthz", app.HealthHandler)
	r.Get("/api/titles", app.TitlesHandler)
	r.Post("/api/suggestions", app.SuggestionsHandler)
	r.Post("/api/watched/{watchedId}", app.WatchedHandler)
	r.Get("/api/details/{mediaType}/{id}", app.DetailsHandler)
	r.Get("/api/background-titles", app.BackgroundTitlesHandler)
	r.Get("/websocket", app.WebsocketHandler)

	srv := &http.Server{
		Addr:    cfg.ServerListenAddr,
		Handler: otelhttp.NewHandler(r, "api"),
	}
	go func() {
		common.Log.Info("Listening", "addr", cfg.ServerListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.Log.Error("Failed to http.Server.ListenAndServe", "err", err)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		common.Log.Error("Failed to http server shutdown", "err", err)
	}

	if err := cache.Close(); err != nil {
		common.Log.Error("Failed to cache.Close", "err", err)
	}

	instrumentationShutdown(ctx)
	if err := loggerShutdown(ctx); err != nil {
		log.Println("Failed to logger shutdown:", err)
	}

	common.Log.Info("Bye!")
}
