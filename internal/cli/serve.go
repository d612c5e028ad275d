package cli

import (
	"fmt"

	"github.com/kolah/openapi2postman/internal/config"
	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/kolah/openapi2postman/internal/logging"
	"github.com/kolah/openapi2postman/internal/server"
	"github.com/spf13/cobra"
)

func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve collection generation over HTTP",
		RunE:  runServe,
	}

	flags := cmd.Flags()
	flags.String("addr", "", "Listen address (default :8000)")
	flags.String("default-url", "", "Host URL used when a request names neither environment nor hostUrl")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd, nil)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty, cmd.ErrOrStderr())

	tmpl, err := engine.NewTemplateEngine(cfg.Templates.Dir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	defaults := cfg.Generation.Options()
	defaults.Templates = tmpl

	srv, err := server.New(server.Options{
		Addr:     cfg.Server.Addr,
		Defaults: defaults,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	return srv.ListenAndServe(cmd.Context())
}
