package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/laudo-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/laudo-service/internal/adapter/kafka"
	"github.com/couchcryptid/laudo-service/internal/adapter/nominatim"
	"github.com/couchcryptid/laudo-service/internal/adapter/pdf"
	"github.com/couchcryptid/laudo-service/internal/config"
	"github.com/couchcryptid/laudo-service/internal/document"
	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/export"
	"github.com/couchcryptid/laudo-service/internal/form"
	"github.com/couchcryptid/laudo-service/internal/observability"
	"github.com/couchcryptid/laudo-service/internal/photo"
	"github.com/couchcryptid/laudo-service/internal/registry"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := registry.NewFileRegistry(cfg.RegistryPath)
	if err != nil {
		logger.Error("failed to open registry", "path", cfg.RegistryPath, "error", err)
		os.Exit(1)
	}
	roster, err := registry.OpenRoster(ctx, reg, logger)
	if err != nil {
		logger.Error("failed to load registry", "path", cfg.RegistryPath, "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via GEOCODER_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		client := nominatim.NewClient(nominatim.Options{
			BaseURL:           cfg.NominatimURL,
			UserAgent:         cfg.NominatimAgent,
			Timeout:           cfg.GeocoderTimeout,
			RequestsPerSecond: cfg.GeocoderRateLimit,
		}, metrics, logger)
		geocoder = nominatim.NewCachedGeocoder(client, cfg.GeocoderCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("nominatim geocoding enabled", "url", cfg.NominatimURL, "cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)
	} else {
		logger.Info("nominatim geocoding disabled")
	}

	resolver := form.NewLocationResolver(geocoder, cfg.StateAbbreviation, cfg.GeocoderTimeout, metrics, logger)
	encoder := photo.NewEncoder(cfg.PhotoMaxDimension, 0, logger)
	forms := form.NewService(form.NewStore(), roster, resolver, encoder, form.Defaults{
		Municipality: cfg.DefaultMunicipality,
		Engineer:     cfg.DefaultEngineer,
		Location:     cfg.Location,
	}, clock, metrics, logger)

	fonts, err := document.LoadFonts()
	if err != nil {
		logger.Error("failed to load fonts", "error", err)
		os.Exit(1)
	}

	// Export events are optional; a nil publisher skips them.
	var publisher export.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("export events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	pipeline := export.New(
		document.NewComposer(fonts),
		document.NewTemplateSource(cfg.TemplatePath),
		document.NewRasterizer(fonts),
		pdf.NewPackager(cfg.ExportJPEGQuality, "laudo-service", clock),
		roster,
		publisher,
		export.Options{
			SettleDelay: cfg.ExportSettleDelay,
			Scale:       cfg.ExportScale,
			Location:    cfg.Location,
		},
		clock, metrics, logger,
	)

	api := httpadapter.NewAPI(forms, roster, pipeline, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, pipeline, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	forms.Wait()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
