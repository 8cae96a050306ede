package api

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/sijill/pkg/kit"
	"github.com/hazyhaar/sijill/pkg/notify"
	"github.com/hazyhaar/sijill/pkg/records"
)

// RegisterMCPTools registers the search, category and notification
// tools on the server. now is injectable for the recent-window filter;
// nil means time.Now.
func RegisterMCPTools(srv *server.MCPServer, reg *records.Registry, store *notify.Store, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	registerSearchRecords(srv, reg, now)
	registerListCategories(srv, reg)
	registerListNotifications(srv, store)
}

func registerSearchRecords(srv *server.MCPServer, reg *records.Registry, now func() time.Time) {
	tool := mcp.NewTool("search_records",
		mcp.WithDescription("Search one record category (medical, insurance, drug, ...) with normalized Arabic/Latin matching. Returns matching records plus total, distinct and alert counts."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category ID, see list_categories")),
		mcp.WithString("q", mcp.Description("Free text matched against every normalized field")),
		mcp.WithString("doctor", mcp.Description("Doctor name filter (categories that declare it)")),
		mcp.WithString("patient", mcp.Description("Patient name filter")),
		mcp.WithString("icd", mcp.Description("ICD-10 code filter")),
		mcp.WithString("code", mcp.Description("Service code filter")),
		mcp.WithString("company", mcp.Description("Company/contract filter")),
		mcp.WithString("claim_type", mcp.Description("Claim type filter")),
		mcp.WithString("date", mcp.Description("Exact day, YYYY-MM-DD")),
		mcp.WithString("from", mcp.Description("Range start, YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Range end, YYYY-MM-DD")),
		mcp.WithString("recent_days", mcp.Description("Keep records from the last N days; exclusive with date/from/to")),
		mcp.WithString("page", mcp.Description("1-based page number")),
		mcp.WithString("page_size", mcp.Description("Records per page, max 500")),
	)

	kit.RegisterMCPTool(srv, tool, searchEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		get := func(k string) string {
			v, _ := args[k].(string)
			return v
		}
		id := get("category")
		cat, ok := reg.Category(id)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", id)
		}
		return &kit.MCPDecodeResult{
			Request: &searchReq{Category: id, Query: buildQuery(cat, get, now)},
		}, nil
	})
}

func registerListCategories(srv *server.MCPServer, reg *records.Registry) {
	tool := mcp.NewTool("list_categories",
		mcp.WithDescription("List configured record categories with their filter parameters."),
	)

	kit.RegisterMCPTool(srv, tool, listCategoriesEndpoint(reg), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerListNotifications(srv *server.MCPServer, store *notify.Store) {
	tool := mcp.NewTool("list_notifications",
		mcp.WithDescription("List stored notifications, newest first."),
		mcp.WithString("kind", mcp.Description("Kind filter (medical, drug, system, ...)")),
		mcp.WithString("severity", mcp.Description("Severity filter (info, warning, critical)")),
		mcp.WithString("q", mcp.Description("Normalized text match against title and body")),
		mcp.WithString("unread", mcp.Description("Set to \"true\" to list unread only")),
	)

	kit.RegisterMCPTool(srv, tool, listNotificationsEndpoint(store), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		get := func(k string) string {
			v, _ := args[k].(string)
			return v
		}
		return &kit.MCPDecodeResult{Request: notificationFilter(get)}, nil
	})
}
