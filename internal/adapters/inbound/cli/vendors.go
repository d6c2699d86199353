package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagaudit/tagaudit/internal/domain/detect"
)

func newVendorsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "List the tracking vendors TagAudit can detect",
		RunE: func(cmd *cobra.Command, args []string) error {
			vendors := detect.Registry()

			if jsonOutput {
				type vendorInfo struct {
					Key        string   `json:"key"`
					Name       string   `json:"name"`
					Domains    []string `json:"domains"`
					EventNames []string `json:"event_names,omitempty"`
				}
				infos := make([]vendorInfo, 0, len(vendors))
				for _, v := range vendors {
					infos = append(infos, vendorInfo{Key: v.Key, Name: v.Name, Domains: v.Domains, EventNames: v.EventNames})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			for _, v := range vendors {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-22s %s\n", v.Key, v.Name, strings.Join(v.Domains, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output vendors as JSON")

	return cmd
}
