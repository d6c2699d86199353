package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/tagaudit/tagaudit/internal/adapters/outbound/capture"
	"github.com/tagaudit/tagaudit/internal/adapters/outbound/config"
	"github.com/tagaudit/tagaudit/internal/adapters/outbound/history"
	"github.com/tagaudit/tagaudit/internal/application"
	"github.com/tagaudit/tagaudit/internal/domain/detect"
	"github.com/tagaudit/tagaudit/internal/domain/rules"
)

// registerTools registers all TagAudit MCP tools on the given server.
func registerTools(s *server.MCPServer, workDir string) {
	// 1. tagaudit_analyze
	s.AddTool(
		mcplib.NewTool("tagaudit_analyze",
			mcplib.WithDescription("Audit a crawler capture file and return the scored report as JSON"),
			mcplib.WithString("path",
				mcplib.Required(),
				mcplib.Description("Path to the capture JSON file"),
			),
			mcplib.WithString("vendor",
				mcplib.Description("Restrict the audit to a single vendor key (e.g. meta, ga4)"),
			),
		),
		handleAnalyze(workDir),
	)

	// 2. tagaudit_vendors
	s.AddTool(
		mcplib.NewTool("tagaudit_vendors",
			mcplib.WithDescription("List the tracking vendors TagAudit can detect"),
		),
		handleVendors(),
	)

	// 3. tagaudit_rules
	s.AddTool(
		mcplib.NewTool("tagaudit_rules",
			mcplib.WithDescription("List the audit rule catalog, optionally for a single vendor"),
			mcplib.WithString("vendor",
				mcplib.Description("Vendor key to filter by (e.g. meta, ga4, gads, tiktok)"),
			),
		),
		handleRules(),
	)

	// 4. tagaudit_history
	s.AddTool(
		mcplib.NewTool("tagaudit_history",
			mcplib.WithDescription("Return past audit scores for the working directory"),
		),
		handleHistory(workDir),
	)
}

func handleAnalyze(workDir string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		cfg, err := config.New().Load(workDir)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		if vendor, _ := request.GetArguments()["vendor"].(string); vendor != "" {
			cfg.Vendors = []string{vendor}
		}

		log := zerolog.Nop()
		result, err := capture.NewFileLoader(log).Load(path)
		if err != nil {
			return errorResult(fmt.Sprintf("loading capture: %v", err)), nil
		}

		report := application.NewAuditService(cfg, log).Audit(result.Requests)
		return jsonResult(report)
	}
}

func handleVendors() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(vendorList())
	}
}

func handleRules() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		catalog := rules.Catalog(rules.Options{})

		if vendor, _ := request.GetArguments()["vendor"].(string); vendor != "" {
			vendorRules, ok := catalog[vendor]
			if !ok {
				return errorResult(fmt.Sprintf("no rules for vendor %q", vendor)), nil
			}
			return jsonResult(ruleList(vendorRules))
		}

		out := make(map[string][]ruleInfo, len(catalog))
		for key, vendorRules := range catalog {
			out[key] = ruleList(vendorRules)
		}
		return jsonResult(out)
	}
}

func handleHistory(workDir string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		entries, err := history.New().Load(workDir)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history: %v", err)), nil
		}
		return jsonResult(entries)
	}
}

type vendorInfo struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Domains    []string `json:"domains"`
	EventNames []string `json:"event_names,omitempty"`
}

func vendorList() []vendorInfo {
	vendors := detect.Registry()
	infos := make([]vendorInfo, 0, len(vendors))
	for _, v := range vendors {
		infos = append(infos, vendorInfo{Key: v.Key, Name: v.Name, Domains: v.Domains, EventNames: v.EventNames})
	}
	return infos
}

type ruleInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Severity       string `json:"severity"`
	Deduction      int    `json:"score_deduction"`
	Recommendation string `json:"recommendation,omitempty"`
}

func ruleList(vendorRules []rules.Rule) []ruleInfo {
	infos := make([]ruleInfo, 0, len(vendorRules))
	for _, r := range vendorRules {
		infos = append(infos, ruleInfo{
			ID: r.ID, Name: r.Name, Description: r.Description,
			Severity: string(r.Severity), Deduction: r.Deduction,
			Recommendation: r.Recommendation,
		})
	}
	return infos
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
