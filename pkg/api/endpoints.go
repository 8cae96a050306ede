package api

import (
	"context"
	"strconv"
	"time"

	"github.com/hazyhaar/sijill/pkg/kit"
	"github.com/hazyhaar/sijill/pkg/notify"
	"github.com/hazyhaar/sijill/pkg/records"
)

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Category string
	Query    records.Query
}

type recordView struct {
	ID     int               `json:"id"`
	Fields map[string]string `json:"fields"`
	Tier   string            `json:"tier,omitempty"`
	Alert  bool              `json:"alert"`
}

type searchResponse struct {
	Category      string       `json:"category"`
	Records       []recordView `json:"records"`
	Total         int          `json:"total"`
	DistinctCount int          `json:"distinct_count"`
	AlertsCount   int          `json:"alerts_count"`
}

type categoryView struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	FilterParams   []string `json:"filter_params"`
	DateColumn     string   `json:"date_column"`
	DistinctColumn string   `json:"distinct_column"`
}

type categoriesResponse struct {
	Categories []categoryView `json:"categories"`
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

func searchEndpoint(reg *records.Registry) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*searchReq)
		res, err := reg.Search(ctx, req.Category, req.Query)
		if err != nil {
			return nil, err
		}
		views := make([]recordView, len(res.Hits))
		for i, h := range res.Hits {
			fields := make(map[string]string, len(h.Fields))
			for as, f := range h.Fields {
				fields[as] = f.Display
			}
			tier := ""
			if h.Tier != records.TierNone {
				tier = h.Tier.String()
			}
			views[i] = recordView{ID: h.ID, Fields: fields, Tier: tier, Alert: h.Alert}
		}
		return searchResponse{
			Category:      req.Category,
			Records:       views,
			Total:         res.Total,
			DistinctCount: res.DistinctCount,
			AlertsCount:   res.AlertsCount,
		}, nil
	}
}

func listCategoriesEndpoint(reg *records.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		cats := reg.Categories()
		views := make([]categoryView, len(cats))
		for i, c := range cats {
			params := make([]string, len(c.Filters))
			for j, f := range c.Filters {
				params[j] = f.Param
			}
			views[i] = categoryView{
				ID:             c.ID,
				Label:          c.Label,
				FilterParams:   params,
				DateColumn:     c.DateColumn,
				DistinctColumn: c.DistinctColumn,
			}
		}
		return categoriesResponse{Categories: views}, nil
	}
}

func listNotificationsEndpoint(store *notify.Store) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		f := request.(*notify.ListFilter)
		items, err := store.List(ctx, *f)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []notify.Notification{}
		}
		return notificationsResponse{Notifications: items}, nil
	}
}

// buildQuery assembles a search query from string parameters, shared by
// the HTTP and MCP decoders. get returns "" for absent parameters.
// Unparsable dates and day counts degrade to "filter not applied"; only
// the explicit date-vs-recent conflict surfaces later as an error.
func buildQuery(cat *records.Category, get func(string) string, now func() time.Time) records.Query {
	q := records.Query{
		Text:   get("q"),
		Alerts: cat.Alerts,
	}

	for _, f := range cat.Filters {
		if v := get(f.Param); v != "" {
			q.Filters = append(q.Filters, records.FieldFilter{Columns: f.Columns, Term: v})
		}
	}

	if d, ok := parseDay(get("date")); ok {
		q.Date = &d
	}
	if d, ok := parseDay(get("from")); ok {
		q.From = &d
	}
	if d, ok := parseDay(get("to")); ok {
		q.To = &d
	}
	if n, err := strconv.Atoi(get("recent_days")); err == nil && n > 0 {
		q.Recent = &records.RecentWindow{Days: n, Now: now()}
	}

	page, size := 1, defaultPageSize
	if n, err := strconv.Atoi(get("page")); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(get("page_size")); err == nil && n > 0 {
		size = min(n, maxPageSize)
	}
	q.Offset = (page - 1) * size
	q.Limit = size
	return q
}

const (
	defaultPageSize = 500
	maxPageSize     = 500
)

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return d.UTC(), true
}

func notificationFilter(get func(string) string) *notify.ListFilter {
	return &notify.ListFilter{
		Kind:       get("kind"),
		Severity:   get("severity"),
		Query:      get("q"),
		UnreadOnly: get("unread") == "true",
	}
}
