package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tagaudit/tagaudit/internal/adapters/outbound/capture"
	"github.com/tagaudit/tagaudit/internal/adapters/outbound/config"
	"github.com/tagaudit/tagaudit/internal/adapters/outbound/history"
	"github.com/tagaudit/tagaudit/internal/adapters/outbound/tui"
	"github.com/tagaudit/tagaudit/internal/application"
	"github.com/tagaudit/tagaudit/internal/domain"
)

func newAuditCmd() *cobra.Command {
	var (
		jsonOutput  bool
		ciMode      bool
		minScore    int
		vendors     []string
		showHistory bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "audit <capture.json>",
		Short: "Audit a captured tracking session",
		Long:  "Parse a crawler capture file, map its requests to tracking vendors, and score each vendor's implementation against the rule catalog.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			dir := filepath.Dir(absPath)

			log := newLogger(cmd, verbose)

			cfg, err := config.New().Load(dir)
			if err != nil {
				return err
			}
			if len(vendors) > 0 {
				cfg.Vendors = vendors
			}

			result, err := capture.NewFileLoader(log).Load(absPath)
			if err != nil {
				return fmt.Errorf("loading capture: %w", err)
			}

			svc := application.NewAuditService(cfg, log)
			report := svc.Audit(result.Requests)

			hist := history.New()
			_ = hist.Save(dir, report.Entry(filepath.Base(absPath))) // best-effort

			if showHistory {
				entries, err := hist.Load(dir)
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
				return nil
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderAudit(report))
			}

			if ciMode {
				min := minScore
				if min == 0 {
					min = cfg.MinScore
				}
				if report.Overall < min {
					return fmt.Errorf("score %d is below minimum %d", report.Overall, min)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if below --min (or min_score from .tagaudit.yaml)")
	cmd.Flags().IntVar(&minScore, "min", 0, "Minimum overall score for CI mode")
	cmd.Flags().StringSliceVar(&vendors, "vendor", nil, "Restrict the audit to the given vendor keys")
	cmd.Flags().BoolVar(&showHistory, "history", false, "Show audit history for the capture's directory")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func newLogger(cmd *cobra.Command, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().Logger()
}

func renderJSON(cmd *cobra.Command, report *domain.AuditReport) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
