package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tagaudit/tagaudit/internal/domain/rules"
)

func sortedKeys(catalog map[string][]rules.Rule) []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules [vendor]",
		Short: "List the audit rules, optionally for a single vendor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := rules.Catalog(rules.Options{})

			var selected map[string][]rules.Rule
			if len(args) > 0 {
				vendorRules, ok := catalog[args[0]]
				if !ok {
					return fmt.Errorf("no rules for vendor %q", args[0])
				}
				selected = map[string][]rules.Rule{args[0]: vendorRules}
			} else {
				selected = catalog
			}

			if jsonOutput {
				type ruleInfo struct {
					ID          string `json:"id"`
					Name        string `json:"name"`
					Description string `json:"description,omitempty"`
					Severity    string `json:"severity"`
					Deduction   int    `json:"score_deduction"`
				}
				out := make(map[string][]ruleInfo, len(selected))
				for key, vendorRules := range selected {
					infos := make([]ruleInfo, 0, len(vendorRules))
					for _, r := range vendorRules {
						infos = append(infos, ruleInfo{
							ID: r.ID, Name: r.Name, Description: r.Description,
							Severity: string(r.Severity), Deduction: r.Deduction,
						})
					}
					out[key] = infos
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			for _, key := range sortedKeys(selected) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", key)
				for _, r := range selected[key] {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %-12s -%-3d %s\n", r.ID, r.Severity, r.Deduction, r.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")

	return cmd
}
