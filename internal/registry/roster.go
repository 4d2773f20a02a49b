package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/laudo-service/internal/domain"
)

// Roster serves the engineer roster and the sequence counter from memory and
// writes every mutation through to the Registry. A mutation whose Save fails
// is rolled back, so memory never runs ahead of storage.
type Roster struct {
	mu     sync.Mutex
	reg    Registry
	state  State
	logger *slog.Logger
}

// OpenRoster loads the registry once at startup.
func OpenRoster(ctx context.Context, reg Registry, logger *slog.Logger) (*Roster, error) {
	state, err := reg.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	logger.Info("registry loaded", "next_sequence", state.NextSequence, "engineers", len(state.Engineers))
	return &Roster{reg: reg, state: state, logger: logger}, nil
}

// Engineers returns a copy of the roster.
func (r *Roster) Engineers() []domain.Engineer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Engineer(nil), r.state.Engineers...)
}

// Engineer looks up an engineer by name.
func (r *Roster) Engineer(name string) (domain.Engineer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.FindEngineer(r.state.Engineers, name)
}

// AddEngineer validates e and appends it to the roster. Names are the
// identity key, so a second engineer with the same name is rejected.
func (r *Roster) AddEngineer(ctx context.Context, e domain.Engineer) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Name = strings.TrimSpace(e.Name)
	e.License = strings.TrimSpace(e.License)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.state.Engineers {
		if strings.EqualFold(existing.Name, e.Name) {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateEngineer, e.Name)
		}
	}

	next := r.state
	next.Engineers = append(append([]domain.Engineer(nil), r.state.Engineers...), e)
	if err := r.reg.Save(ctx, next); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	r.state = next
	r.logger.Info("engineer registered", "name", e.Name, "license", e.License)
	return nil
}

// NextSequence is the id the next new report receives.
func (r *Roster) NextSequence() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.NextSequence
}

// Advance records that the report with sequence id used has been exported,
// moving the counter past it, and returns the new counter. The counter never
// moves backwards.
func (r *Roster) Advance(ctx context.Context, used int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.state
	next.NextSequence = max(r.state.NextSequence, used+1)
	if err := r.reg.Save(ctx, next); err != nil {
		return r.state.NextSequence, fmt.Errorf("save registry: %w", err)
	}
	r.state = next
	return next.NextSequence, nil
}
