package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagaudit/tagaudit/internal/adapters/inbound/httpapi"
	"github.com/tagaudit/tagaudit/internal/adapters/outbound/config"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TagAudit HTTP API",
		Long:  "Expose the audit engine over HTTP: POST capture JSON to /analyze and get the scored report back.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd, verbose)

			cfg, err := config.New().Load(".")
			if err != nil {
				return err
			}

			srv := httpapi.New(cfg, log)
			fmt.Fprintf(cmd.OutOrStdout(), "tagaudit API listening on %s\n", addr)
			return srv.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8666", "Listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}
