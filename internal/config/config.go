package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Report defaults and local state.
	RegistryPath        string
	TemplatePath        string
	Location            *time.Location
	StateAbbreviation   string
	DefaultMunicipality string
	DefaultEngineer     string

	// Export pipeline tuning.
	ExportSettleDelay time.Duration
	ExportScale       float64
	ExportJPEGQuality int
	PhotoMaxDimension int

	// Nominatim reverse geocoding configuration.
	GeocoderEnabled   bool
	NominatimURL      string
	NominatimAgent    string
	GeocoderTimeout   time.Duration
	GeocoderCacheSize int
	GeocoderRateLimit float64

	// Kafka export events, disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	settleDelay, err := parsePositiveDuration("EXPORT_SETTLE_DELAY", "1500ms", true)
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	scale, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("EXPORT_SCALE", "2"), 64)
	if err != nil || scale < 1 || scale > 4 {
		return nil, errors.New("invalid EXPORT_SCALE: must be between 1 and 4")
	}
	quality, err := strconv.Atoi(sharedcfg.EnvOrDefault("EXPORT_JPEG_QUALITY", "95"))
	if err != nil || quality < 1 || quality > 100 {
		return nil, errors.New("invalid EXPORT_JPEG_QUALITY: must be between 1 and 100")
	}
	photoMax, err := strconv.Atoi(sharedcfg.EnvOrDefault("PHOTO_MAX_DIMENSION", "1600"))
	if err != nil || photoMax < 64 {
		return nil, errors.New("invalid PHOTO_MAX_DIMENSION: must be at least 64")
	}
	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GEOCODER_RATE_LIMIT", "1"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid GEOCODER_RATE_LIMIT: must be positive")
	}

	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	geocoderEnabled := true
	if v := os.Getenv("GEOCODER_ENABLED"); v != "" {
		geocoderEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RegistryPath:        sharedcfg.EnvOrDefault("REGISTRY_PATH", "./data/registry.json"),
		TemplatePath:        os.Getenv("TEMPLATE_PATH"),
		Location:            loc,
		StateAbbreviation:   sharedcfg.EnvOrDefault("STATE_ABBREVIATION", "PR"),
		DefaultMunicipality: sharedcfg.EnvOrDefault("DEFAULT_MUNICIPALITY", "Rio Bonito do Iguaçu"),
		DefaultEngineer:     sharedcfg.EnvOrDefault("DEFAULT_ENGINEER", "Daniel"),

		ExportSettleDelay: settleDelay,
		ExportScale:       scale,
		ExportJPEGQuality: quality,
		PhotoMaxDimension: photoMax,

		GeocoderEnabled:   geocoderEnabled,
		NominatimURL:      sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimAgent:    sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "laudo-service/1.0 (defesa civil PR)"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderCacheSize: parseCacheSize(),
		GeocoderRateLimit: rateLimit,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "laudos-exported"),
	}

	if cfg.GeocoderEnabled && cfg.NominatimURL == "" {
		return nil, errors.New("GEOCODER_ENABLED is true but NOMINATIM_URL is empty")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether export events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// parsePositiveDuration reads key as a duration. allowZero permits "0" for
// delays that may be switched off.
func parsePositiveDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
