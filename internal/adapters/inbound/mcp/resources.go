package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tagaudit/tagaudit/internal/domain/rules"
)

// registerResources registers all TagAudit MCP resources on the given server.
func registerResources(s *server.MCPServer) {
	// 1. tagaudit://vendors - detectable vendor catalog
	s.AddResource(
		mcplib.NewResource(
			"tagaudit://vendors",
			"Vendors",
			mcplib.WithResourceDescription("Tracking vendors TagAudit can detect, with their domains and known events"),
			mcplib.WithMIMEType("application/json"),
		),
		handleVendorsResource(),
	)

	// 2. tagaudit://rules/{vendor} - per-vendor rule catalog (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"tagaudit://rules/{vendor}",
			"Vendor Rules",
			mcplib.WithTemplateDescription("Audit rule catalog for a specific vendor"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleRulesResource(),
	)
}

func handleVendorsResource() server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(vendorList(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling vendors: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "tagaudit://vendors",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleRulesResource() server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		vendor, ok := request.Params.Arguments["vendor"].(string)
		if !ok || vendor == "" {
			return nil, fmt.Errorf("vendor key is required")
		}

		catalog := rules.Catalog(rules.Options{})
		vendorRules, ok := catalog[vendor]
		if !ok {
			return nil, fmt.Errorf("no rules for vendor %q", vendor)
		}

		data, err := json.MarshalIndent(ruleList(vendorRules), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling rules: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
