// Package export turns a report into its printable PDF and, on success,
// advances the registry counter.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/laudo-service/internal/document"
	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// FailureMessage is the only failure detail shown to the inspector.
const FailureMessage = "Erro ao gerar PDF."

var (
	// ErrExportInProgress is returned when an export is requested while another is running.
	ErrExportInProgress = errors.New("export already in progress")
	// ErrExportFailed wraps every failure inside a running export.
	ErrExportFailed = errors.New("export failed")
)

// Composer lays out a report as printed at now.
type Composer interface {
	Compose(r domain.Report, eng domain.Engineer, now time.Time) document.Layout
}

// Rasterizer draws a scene at the given scale.
type Rasterizer interface {
	Rasterize(ctx context.Context, s document.Scene, scale float64) (image.Image, error)
}

// Packager embeds a captured page into a PDF.
type Packager interface {
	Package(ctx context.Context, page image.Image, title string) ([]byte, error)
}

// Publisher announces completed exports. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, rec domain.ExportRecord) error
}

// Sequencer is the registry view the pipeline needs.
type Sequencer interface {
	NextSequence() int
	Engineer(name string) (domain.Engineer, bool)
	Advance(ctx context.Context, used int) (int, error)
}

// Options tunes the pipeline.
type Options struct {
	// SettleDelay is how long a mounted scene rests before capture.
	SettleDelay time.Duration
	// Scale multiplies the page size for capture.
	Scale float64
	// Location is the zone used for the control number year.
	Location *time.Location
}

// Result is a finished export.
type Result struct {
	ID            int
	ControlNumber string
	PDF           []byte
}

// Pipeline runs one export at a time through
// Idle -> Rendering -> Capturing -> Packaging -> Complete | Failed.
type Pipeline struct {
	composer   Composer
	template   document.TemplateSource
	rasterizer Rasterizer
	packager   Packager
	sequencer  Sequencer
	publisher  Publisher
	opts       Options
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger

	stage    stage
	inFlight atomic.Bool
	state    atomic.Int32
}

// New creates a Pipeline. publisher may be nil.
func New(c Composer, t document.TemplateSource, r Rasterizer, p Packager, seq Sequencer, pub Publisher,
	opts Options, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Pipeline{
		composer:   c,
		template:   t,
		rasterizer: r,
		packager:   p,
		sequencer:  seq,
		publisher:  pub,
		opts:       opts,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// State returns the current or last reached state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Mounted reports whether a scene is on the off-screen stage.
func (p *Pipeline) Mounted() bool {
	_, ok := p.stage.mounted()
	return ok
}

// CheckReadiness reports an error while an export holds the pipeline.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.inFlight.Load() {
		return errors.New("export in progress")
	}
	return nil
}

// Export renders, captures and packages r. A report numbered below the
// registry's next sequence value is renumbered first. On success the counter
// advances past the number used; on failure nothing is persisted and the
// error wraps ErrExportFailed.
func (p *Pipeline) Export(ctx context.Context, r domain.Report) (Result, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.metrics.Exports.WithLabelValues("rejected").Inc()
		return Result{}, ErrExportInProgress
	}
	defer p.inFlight.Store(false)
	p.metrics.ExportInFlight.Set(1)
	defer p.metrics.ExportInFlight.Set(0)

	start := p.clock.Now()
	res, err := p.run(ctx, r)
	if err != nil {
		failedIn := p.State()
		p.setState(Failed)
		p.stage.unmount()
		p.metrics.Exports.WithLabelValues("failed").Inc()
		p.logger.Error("export failed", "report_id", r.ID, "stage", failedIn.String(), "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	p.metrics.Exports.WithLabelValues("success").Inc()
	p.metrics.ExportDuration.Observe(p.clock.Since(start).Seconds())
	p.logger.Info("export complete", "report_id", res.ID, "control_number", res.ControlNumber, "pdf_bytes", len(res.PDF))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, r domain.Report) (Result, error) {
	now := p.clock.Now().In(p.opts.Location)
	if next := p.sequencer.NextSequence(); r.ID < next {
		p.logger.Info("renumbering report already exported", "report_id", r.ID, "next_sequence", next)
		r.ID = next
	}
	eng, _ := p.sequencer.Engineer(r.Engineer)

	// Rendering
	stageStart := p.enter(Rendering)
	layout := p.composer.Compose(r, eng, now)
	if layout.Overflow {
		p.logger.Warn("report content does not fit the page and was clipped", "report_id", r.ID, "damages", len(r.Damages))
	}
	background, err := p.template.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load template: %w", err)
	}
	scene, err := document.Prepare(ctx, layout, background)
	if err != nil {
		return Result{}, fmt.Errorf("prepare scene: %w", err)
	}
	p.stage.mount(scene)
	if err := p.settle(ctx); err != nil {
		return Result{}, err
	}
	p.leave(Rendering, stageStart)

	// Capturing
	stageStart = p.enter(Capturing)
	mounted, ok := p.stage.mounted()
	if !ok {
		return Result{}, errors.New("stage unmounted before capture")
	}
	page, err := p.rasterizer.Rasterize(ctx, mounted, p.opts.Scale)
	if err != nil {
		return Result{}, fmt.Errorf("rasterize: %w", err)
	}
	p.leave(Capturing, stageStart)

	// Packaging
	stageStart = p.enter(Packaging)
	control := domain.ControlNumber(r.ID, now)
	doc, err := p.packager.Package(ctx, page, "Laudo Técnico "+control)
	if err != nil {
		return Result{}, fmt.Errorf("package pdf: %w", err)
	}
	p.leave(Packaging, stageStart)

	// Complete
	if _, err := p.sequencer.Advance(ctx, r.ID); err != nil {
		return Result{}, fmt.Errorf("persist counter: %w", err)
	}
	p.setState(Complete)
	p.publish(ctx, domain.NewExportRecord(r, control, len(doc), now))
	p.stage.unmount()

	return Result{ID: r.ID, ControlNumber: control, PDF: doc}, nil
}

// settle waits for the configured delay on the pipeline clock.
func (p *Pipeline) settle(ctx context.Context) error {
	if p.opts.SettleDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.opts.SettleDelay):
		return nil
	}
}

func (p *Pipeline) publish(ctx context.Context, rec domain.ExportRecord) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, rec); err != nil {
		p.logger.Warn("publish export record failed", "control_number", rec.ControlNumber, "error", err)
	}
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
}

func (p *Pipeline) enter(s State) time.Time {
	p.setState(s)
	p.logger.Debug("export stage", "stage", s.String())
	return p.clock.Now()
}

func (p *Pipeline) leave(s State, start time.Time) {
	p.metrics.ExportStage.WithLabelValues(s.String()).Observe(p.clock.Since(start).Seconds())
}
