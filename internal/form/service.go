package form

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/observability"
	"github.com/couchcryptid/laudo-service/internal/photo"
	"github.com/couchcryptid/laudo-service/internal/registry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// PhotoEncoder converts a batch of uploads into data URLs, all or nothing.
type PhotoEncoder interface {
	EncodeAll(ctx context.Context, files []photo.File) ([]string, error)
}

// Defaults are the values a new draft starts with.
type Defaults struct {
	Municipality string
	Engineer     string
	Location     *time.Location
}

// Service creates and edits drafts.
type Service struct {
	store    *Store
	roster   *registry.Roster
	resolver *LocationResolver
	encoder  PhotoEncoder
	defaults Defaults
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService creates a draft service.
func NewService(store *Store, roster *registry.Roster, resolver *LocationResolver, encoder PhotoEncoder,
	defaults Defaults, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if defaults.Location == nil {
		defaults.Location = time.UTC
	}
	return &Service{
		store:    store,
		roster:   roster,
		resolver: resolver,
		encoder:  encoder,
		defaults: defaults,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// NewDraft starts a report numbered with the registry's next sequence value
// and dated today.
func (s *Service) NewDraft() *Draft {
	r := domain.NewReport(
		s.roster.NextSequence(),
		s.clock.Now().In(s.defaults.Location),
		s.defaults.Municipality,
		s.defaults.Engineer,
	)
	d := newDraft(uuid.NewString(), r)
	s.store.Set(d)
	s.metrics.DraftsActive.Inc()
	s.logger.Info("draft created", "draft", d.ID(), "report_id", r.ID)
	return d
}

// Draft returns the draft for id or ErrDraftNotFound.
func (s *Service) Draft(id string) (*Draft, error) {
	d, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return d, nil
}

// Discard drops a draft.
func (s *Service) Discard(id string) error {
	if !s.store.Delete(id) {
		return fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	s.metrics.DraftsActive.Dec()
	return nil
}

// SetLocation records the coordinates and starts resolving the address.
func (s *Service) SetLocation(id string, lat, lon float64) (*Draft, error) {
	d, err := s.Draft(id)
	if err != nil {
		return nil, err
	}
	token, err := d.setLocation(lat, lon)
	if err != nil {
		return nil, err
	}
	s.resolver.Resolve(d, token, lat, lon)
	return d, nil
}

// AddPhotos converts the uploads concurrently and appends them to the damage
// entry for category once every conversion has finished. If any conversion
// fails nothing is attached. Photos for a category that is not selected when
// the conversions finish are discarded without error. It returns the number
// of photos attached.
func (s *Service) AddPhotos(ctx context.Context, id, category string, files []photo.File) (int, error) {
	d, err := s.Draft(id)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	if !d.hasDamage(category) {
		s.dropPhotos(d, category, len(files))
		return 0, nil
	}

	encoded, err := s.encoder.EncodeAll(ctx, files)
	if err != nil {
		return 0, fmt.Errorf("convert photos: %w", err)
	}

	if !d.appendPhotos(category, encoded) {
		s.dropPhotos(d, category, len(encoded))
		return 0, nil
	}
	s.metrics.PhotosAttached.Add(float64(len(encoded)))
	s.logger.Debug("photos attached", "draft", d.ID(), "category", category, "count", len(encoded))
	return len(encoded), nil
}

func (s *Service) dropPhotos(d *Draft, category string, n int) {
	s.metrics.PhotosDropped.Add(float64(n))
	s.logger.Info("photos discarded, damage category not selected", "draft", d.ID(), "category", category, "count", n)
}

// Wait blocks until background address lookups have finished.
func (s *Service) Wait() {
	s.resolver.Wait()
}
