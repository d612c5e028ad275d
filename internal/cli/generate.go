package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kolah/openapi2postman/internal/batch"
	"github.com/kolah/openapi2postman/internal/config"
	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/kolah/openapi2postman/internal/loader"
	"github.com/kolah/openapi2postman/internal/logging"
	"github.com/kolah/openapi2postman/internal/output"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [spec...]",
		Short: "Generate a Postman collection for each OpenAPI document",
		RunE:  runGenerate,
	}

	config.BindGenerationFlags(cmd)

	flags := cmd.Flags()
	flags.StringP("output-dir", "o", "", "Directory receiving the collection and metrics files")
	flags.Int("concurrency", 0, "Documents processed in parallel")
	flags.Bool("dry-run", false, "Print output without writing files")

	return cmd
}

type generateRun struct {
	opts   engine.Options
	log    zerolog.Logger
	dir    string
	dryRun bool

	mu  sync.Mutex
	out io.Writer
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Specs) == 0 {
		return errors.New("at least one spec file is required")
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty, cmd.ErrOrStderr())

	tmpl, err := engine.NewTemplateEngine(cfg.Templates.Dir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	opts := cfg.Generation.Options()
	opts.Templates = tmpl
	if path := cfg.Generation.SuccessBody; path != "" {
		body, err := loader.LoadSuccessBody(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("ignoring success body")
		} else {
			opts.SuccessBody = body
		}
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	run := &generateRun{
		opts:   opts,
		log:    log,
		dir:    cfg.OutputDir,
		dryRun: dryRun,
		out:    cmd.OutOrStdout(),
	}

	summary := batch.Run(cmd.Context(), cfg.Specs, cfg.Batch.Concurrency, run.document)

	for _, dup := range summary.Duplicates {
		log.Warn().Str("spec", dup).Msg("duplicate spec path, processed once")
	}

	for _, o := range summary.Outcomes {
		if o.Err != nil {
			cmd.PrintErrf("FAIL %s: %v\n", o.Path, o.Err)
			continue
		}
		cmd.PrintErrf("ok   %s -> %s (%d requests)\n", o.Path, o.Filename, o.Metrics.TestRequests)
	}
	totals := summary.Totals()
	cmd.PrintErrf("Status: %s\n", summary.Status())
	cmd.PrintErrf("  Endpoints: %d\n", totals.Endpoints)
	cmd.PrintErrf("  Resources: %d\n", totals.Resources)
	cmd.PrintErrf("  Operations: %d\n", totals.Operations)
	cmd.PrintErrf("  Test requests: %d\n", totals.TestRequests)

	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(failed), len(summary.Outcomes))
	}
	return nil
}

func (g *generateRun) document(_ context.Context, path string) (*engine.Result, error) {
	log := g.log.With().Str("spec", path).Logger()

	loaded, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading spec: %w", err)
	}
	for _, w := range loaded.Warnings {
		log.Warn().Msg(w)
	}

	doc, err := loader.Transform(loaded)
	if err != nil {
		return nil, fmt.Errorf("transforming spec: %w", err)
	}

	opts := g.opts
	opts.Logger = &log
	gen, err := engine.New(opts)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	result, err := gen.Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("generating collection: %w", err)
	}

	outputs, err := output.Render(result)
	if err != nil {
		return nil, err
	}

	if g.dryRun {
		g.mu.Lock()
		defer g.mu.Unlock()
		for _, out := range outputs {
			fmt.Fprintf(g.out, "// %s\n%s", out.Filename, out.Content)
		}
		return result, nil
	}

	written, err := output.Write(g.dir, outputs)
	if err != nil {
		return nil, err
	}
	log.Info().Strs("files", written).Msg("written")

	return result, nil
}
