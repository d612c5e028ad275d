package cli

import (
	"github.com/kolah/openapi2postman/internal/config"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "openapi2postman",
		Short:   "Generate Postman collections with test scripts from OpenAPI 3.0 documents",
		Version: "1.0.0",

		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	config.BindFlags(root)

	root.AddCommand(GenerateCommand(), ServeCommand())

	return root
}
