package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/laudo-service/internal/adapter/pdf"
	"github.com/couchcryptid/laudo-service/internal/config"
	"github.com/couchcryptid/laudo-service/internal/document"
	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/export"
	"github.com/couchcryptid/laudo-service/internal/observability"
	"github.com/couchcryptid/laudo-service/internal/registry"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	input    string
	output   string
	template string
	scale    float64
	commit   bool
}

func newRootCmd() *cobra.Command {
	opts := renderOptions{}
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a damage assessment report JSON file to PDF",
		Long: `Render lays out a saved report on the letterhead template and writes the
single-page A4 PDF the service would export.

Engineers and the report counter come from REGISTRY_PATH. The counter is only
advanced when --commit is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			var err error
			cfg, err = config.Load()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "report JSON file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF file to write (default laudo-<control number>.pdf)")
	cmd.Flags().StringVar(&opts.template, "template", "", "letterhead template image (default TEMPLATE_PATH)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "capture scale (default EXPORT_SCALE)")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "advance the registry counter after rendering")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runRender(ctx context.Context, cfg *config.Config, opts renderOptions, out io.Writer) error {
	logger := observability.NewLogger(cfg)
	clock := clockwork.NewRealClock()

	report, err := readReport(opts.input, clock.Now().In(cfg.Location))
	if err != nil {
		return err
	}

	reg, err := openRegistry(ctx, cfg.RegistryPath, opts.commit)
	if err != nil {
		return err
	}
	roster, err := registry.OpenRoster(ctx, reg, logger)
	if err != nil {
		return err
	}

	fonts, err := document.LoadFonts()
	if err != nil {
		return err
	}

	templatePath := cfg.TemplatePath
	if opts.template != "" {
		templatePath = opts.template
	}
	scale := cfg.ExportScale
	if opts.scale > 0 {
		scale = opts.scale
	}

	pipeline := export.New(
		document.NewComposer(fonts),
		document.NewTemplateSource(templatePath),
		document.NewRasterizer(fonts),
		pdf.NewPackager(cfg.ExportJPEGQuality, "laudo-render", clock),
		roster,
		nil,
		// Nothing is displayed, so there is nothing to settle.
		export.Options{Scale: scale, Location: cfg.Location},
		clock, observability.NewMetricsForTesting(), logger,
	)

	res, err := pipeline.Export(ctx, report)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = "laudo-" + res.ControlNumber + ".pdf"
	}
	if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	fmt.Fprintf(out, "%s: laudo %s (%d bytes)\n", path, res.ControlNumber, len(res.PDF))
	return nil
}

// readReport decodes a report and re-derives its severity pair from the
// classification so a hand-edited file cannot print an inconsistent pair.
func readReport(path string, now time.Time) (domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Report{}, fmt.Errorf("read report: %w", err)
	}
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}
	c, err := domain.ParseClassification(string(r.Classification))
	if err != nil {
		return domain.Report{}, fmt.Errorf("report %s: %w", path, err)
	}
	r.SetClassification(c)
	if r.Damages == nil {
		r.Damages = []domain.DamageEntry{}
	}
	if r.Date == "" {
		r.Date = now.Format(domain.DateLayout)
	}
	return r, nil
}

// openRegistry returns the file registry when the counter should advance, or
// an in-memory copy of it otherwise.
func openRegistry(ctx context.Context, path string, commit bool) (registry.Registry, error) {
	file, err := registry.NewFileRegistry(path)
	if err != nil {
		return nil, err
	}
	if commit {
		return file, nil
	}
	state, err := file.Load(ctx)
	if err != nil {
		return nil, err
	}
	kv, err := registry.Encode(state)
	if err != nil {
		return nil, err
	}
	return registry.NewMemoryRegistry(kv), nil
}
