package form

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/observability"
)

// LocationResolver fills in a draft's address from its coordinates in the
// background. Lookup failures are logged and leave the address untouched.
type LocationResolver struct {
	geocoder domain.Geocoder
	state    string
	timeout  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewLocationResolver creates a resolver. A nil geocoder disables lookups;
// coordinates are still recorded.
func NewLocationResolver(geocoder domain.Geocoder, state string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *LocationResolver {
	return &LocationResolver{
		geocoder: geocoder,
		state:    state,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// Resolve starts a lookup for (lat, lon) and returns immediately. The result
// is applied to d only if token is still the draft's latest location.
func (r *LocationResolver) Resolve(d *Draft, token uint64, lat, lon float64) {
	if r.geocoder == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.resolve(d, token, lat, lon)
	}()
}

// Wait blocks until every started lookup has finished.
func (r *LocationResolver) Wait() {
	r.wg.Wait()
}

func (r *LocationResolver) resolve(d *Draft, token uint64, lat, lon float64) {
	// Lookups outlive the request that triggered them.
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, err := r.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		r.logger.Warn("reverse geocoding failed", "draft", d.ID(), "lat", lat, "lon", lon, "error", err)
		return
	}
	if result.DisplayName == "" {
		r.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		r.logger.Info("no address found for location", "draft", d.ID(), "lat", lat, "lon", lon)
		return
	}

	address := domain.FormatAddress(result.Address, r.state)
	if !d.applyAddress(token, address) {
		r.metrics.GeocodeRequests.WithLabelValues("stale").Inc()
		r.logger.Debug("discarded stale geocoding result", "draft", d.ID(), "token", token)
		return
	}
	r.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	r.logger.Debug("address resolved", "draft", d.ID(), "address", address)
}
