package records

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/sijill/pkg/normalize"
)

// ErrDateConflict is returned when a query carries both an explicit date
// filter (exact or range) and a recent window. The source routes
// disagreed on which one wins, so the caller must pick one.
var ErrDateConflict = errors.New("explicit date filter and recent window are mutually exclusive")

// Tier classifies how a record matched a field filter. Exact matches
// rank conceptually above partial ones; the engine does not re-order by
// tier but exposes it so callers can.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierPrefix
	TierContains
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierContains:
		return "contains"
	default:
		return "none"
	}
}

// FieldFilter matches one query term against one or more fields; a
// record passes if any named field matches at any tier.
type FieldFilter struct {
	Columns []string
	Term    string
}

// RecentWindow keeps records whose resolved date falls within Days
// before Now. Now is injected by the caller, never read ambiently.
type RecentWindow struct {
	Days int
	Now  time.Time
}

// Query is a value object describing one search.
type Query struct {
	Text    string
	Filters []FieldFilter
	Date    *time.Time
	From    *time.Time
	To      *time.Time
	Recent  *RecentWindow
	Alerts  []AlertRule
	Offset  int
	Limit   int // 0 means no limit
}

// Hit is one matching record with its filter tier and alert state.
type Hit struct {
	Record
	Tier  Tier
	Alert bool
}

// Result is an ordered page of hits plus aggregates computed over the
// whole filtered set, before pagination.
type Result struct {
	Hits          []Hit
	Total         int
	DistinctCount int
	AlertsCount   int
}

// Search applies the query's filters over the index and returns the
// hits sorted by resolved date descending, unresolved dates last, ties
// stable by original record order. The total, distinct count and alert
// count aggregates are computed over
// the filtered set: alerts mean "alerts among what the user is looking
// at", never alerts in the whole table.
func (ix *Index) Search(q Query) (Result, error) {
	if (q.Date != nil || q.From != nil || q.To != nil) && q.Recent != nil {
		return Result{}, ErrDateConflict
	}

	textKey := normalize.Text(q.Text)
	codeKey := normalize.FirstCode(q.Text)

	filters := make([]compiledFilter, 0, len(q.Filters))
	for _, f := range q.Filters {
		if cf, ok := ix.compileFilter(f); ok {
			filters = append(filters, cf)
		}
	}

	var hits []Hit
	for i := range ix.Records {
		rec := &ix.Records[i]

		if !ix.dateMatch(rec, q) {
			continue
		}

		tier := TierNone
		matched := true
		for _, cf := range filters {
			ft := cf.match(rec)
			if ft == TierNone {
				matched = false
				break
			}
			if ft > tier {
				tier = ft // weakest tier across filters, conservative for re-ranking
			}
		}
		if !matched {
			continue
		}

		if textKey != "" && !freeTextMatch(rec, textKey, codeKey) {
			continue
		}

		hits = append(hits, Hit{
			Record: *rec,
			Tier:   tier,
			Alert:  EvaluateAlerts(q.Alerts, rec),
		})
	}

	sortHits(hits, ix.Category.DateColumn)

	res := Result{Total: len(hits)}
	res.DistinctCount = distinctCount(hits, ix.Category.DistinctColumn)
	for _, h := range hits {
		if h.Alert {
			res.AlertsCount++
		}
	}

	res.Hits = page(hits, q.Offset, q.Limit)
	return res, nil
}

// EvaluateAlerts reports whether any rule fires for the record.
// Evaluation is stateless: a missing or unparsable field never fires.
func EvaluateAlerts(rules []AlertRule, rec *Record) bool {
	for _, rule := range rules {
		f, ok := rec.Fields[rule.Column]
		if !ok {
			continue
		}
		switch rule.Op {
		case "gte":
			if f.NumOK && f.Num >= rule.Threshold {
				return true
			}
		case "eq":
			if f.Norm != "" && f.Norm == normalize.Text(rule.Value) {
				return true
			}
		}
	}
	return false
}

// compiledFilter is a filter with its term already normalized per the
// kind of the first column it targets. Filters whose normalized key is
// empty are dropped; an empty key would match everything.
type compiledFilter struct {
	columns []string
	key     string
	code    normalize.Code
	kind    FieldKind
}

func (ix *Index) compileFilter(f FieldFilter) (compiledFilter, bool) {
	if len(f.Columns) == 0 {
		return compiledFilter{}, false
	}
	col, ok := ix.Category.Column(f.Columns[0])
	if !ok {
		return compiledFilter{}, false
	}

	cf := compiledFilter{columns: f.Columns, kind: col.Kind}
	switch col.Kind {
	case KindPersonName:
		cf.key = normalize.Name(f.Term)
	case KindOrganization:
		cf.key = normalize.Key(f.Term)
	case KindClinicalCode:
		cf.code = normalize.FirstCode(f.Term)
		cf.key = normalize.Text(f.Term)
	default:
		cf.key = normalize.Text(f.Term)
	}
	if cf.key == "" && cf.code.Full == "" {
		return compiledFilter{}, false
	}
	return cf, true
}

// match returns the best tier across the filter's columns.
func (cf *compiledFilter) match(rec *Record) Tier {
	best := TierNone
	for _, col := range cf.columns {
		f, ok := rec.Fields[col]
		if !ok {
			continue
		}
		t := cf.matchField(f)
		if t != TierNone && (best == TierNone || t < best) {
			best = t
		}
		if best == TierExact {
			break
		}
	}
	return best
}

func (cf *compiledFilter) matchField(f Field) Tier {
	switch cf.kind {
	case KindPersonName:
		// Both projections count: a query with a title still lands.
		switch {
		case f.Bare == cf.key || f.Norm == cf.key:
			return TierExact
		case strings.HasPrefix(f.Bare, cf.key):
			return TierPrefix
		case strings.Contains(f.Bare, cf.key) || strings.Contains(f.Norm, cf.key):
			return TierContains
		}
	case KindClinicalCode:
		switch {
		case f.Code.Full == cf.code.Full:
			return TierExact
		case strings.HasPrefix(f.Code.Full, cf.code.Full),
			f.Code.Root == cf.code.Root,
			strings.HasPrefix(f.Code.Root, cf.code.Root):
			return TierPrefix
		case cf.key != "" && strings.Contains(f.Norm, cf.key):
			return TierContains
		}
	default:
		switch {
		case f.Norm == cf.key:
			return TierExact
		case strings.HasPrefix(f.Norm, cf.key):
			return TierPrefix
		case strings.Contains(f.Norm, cf.key):
			return TierContains
		}
	}
	return TierNone
}

// freeTextMatch probes every normalized projection; clinical-code
// fields additionally test the full and root code forms.
func freeTextMatch(rec *Record, key string, codeKey normalize.Code) bool {
	for _, f := range rec.Fields {
		if f.Norm != "" && strings.Contains(f.Norm, key) {
			return true
		}
		if f.Bare != "" && strings.Contains(f.Bare, key) {
			return true
		}
		if f.Kind == KindClinicalCode && codeKey.Full != "" {
			if strings.Contains(f.Code.Full, codeKey.Full) || strings.Contains(f.Code.Root, codeKey.Root) {
				return true
			}
		}
	}
	return false
}

func (ix *Index) dateMatch(rec *Record, q Query) bool {
	if q.Date == nil && q.From == nil && q.To == nil && q.Recent == nil {
		return true
	}
	f, ok := rec.Fields[ix.Category.DateColumn]
	if !ok || !f.DateOK {
		return false // unresolved dates are excluded by any date filter
	}
	if q.Date != nil {
		return f.Date.Equal(*q.Date)
	}
	if q.From != nil && f.Date.Before(*q.From) {
		return false
	}
	if q.To != nil && f.Date.After(*q.To) {
		return false
	}
	if q.Recent != nil {
		cutoff := q.Recent.Now.AddDate(0, 0, -q.Recent.Days)
		return !f.Date.Before(cutoff)
	}
	return true
}

func sortHits(hits []Hit, dateColumn string) {
	sort.SliceStable(hits, func(i, j int) bool {
		fi, iok := hits[i].Fields[dateColumn]
		fj, jok := hits[j].Fields[dateColumn]
		iok = iok && fi.DateOK
		jok = jok && fj.DateOK
		switch {
		case iok && jok:
			return fi.Date.After(fj.Date)
		case iok:
			return true // resolved before unresolved
		default:
			return false
		}
	})
}

func distinctCount(hits []Hit, column string) int {
	if column == "" {
		return 0
	}
	seen := make(map[string]struct{})
	for _, h := range hits {
		f, ok := h.Fields[column]
		if !ok {
			continue
		}
		v := strings.TrimSpace(f.Display)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

func page(hits []Hit, offset, limit int) []Hit {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return []Hit{}
	}
	end := len(hits)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return hits[offset:end]
}
