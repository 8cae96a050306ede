package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/sijill/pkg/normalize"
)

// Field holds every projection derived from one cell. Which members are
// populated depends on the column kind; all of them are derived purely
// from the raw value and never mutated after the index build.
type Field struct {
	Kind    FieldKind
	Display string // original value rendered for output; dates reformat, unresolved render ""
	Norm    string // general normalized projection (matching key for organizations)
	Bare    string // person name with honorifics stripped
	Code    normalize.Code
	Date    time.Time
	DateOK  bool
	Num     float64
	NumOK   bool
}

// Record is one indexed row: the raw display values plus normalized
// projections for every present schema column, keyed by output field
// name. ID is the 1-based sequence position in the source snapshot.
type Record struct {
	ID     int
	Fields map[string]Field
}

// Field returns the derived field for an output field name.
func (r *Record) Field(as string) (Field, bool) {
	f, ok := r.Fields[as]
	return f, ok
}

func deriveField(kind FieldKind, raw any) Field {
	disp := normalize.Value(raw)
	f := Field{Kind: kind, Display: disp}

	switch kind {
	case KindPersonName:
		f.Norm = normalize.NameRaw(disp)
		f.Bare = normalize.Name(disp)
	case KindOrganization:
		f.Norm = normalize.Key(disp)
	case KindClinicalCode:
		f.Code = normalize.FirstCode(disp)
		f.Norm = normalize.Text(disp)
	case KindDate:
		f.Date, f.DateOK = normalize.ResolveDate(raw)
		f.Display = normalize.FormatDate(f.Date, f.DateOK)
		f.Norm = f.Display
	case KindNumeric:
		f.Num, f.NumOK = parseNumber(raw)
		f.Norm = normalize.Text(disp)
	default:
		f.Norm = normalize.Text(disp)
	}
	return f
}

func parseNumber(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	s := normalize.Digits(strings.TrimSpace(normalize.Value(raw)))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
