package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// excelEpoch is the day-count origin used by Excel serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var (
	serialRE   = regexp.MustCompile(`^[0-9]{3,5}$`)
	digitsRE   = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)
	dayFirstRE = regexp.MustCompile(`^([0-9]{1,2})[./-]([0-9]{1,2})[./-]([0-9]{4})$`)
)

// ResolveDate heuristically resolves a raw cell into a calendar date.
// Resolution order:
//  1. an already-parsed time passes through (date part only);
//  2. a number in the plausible serial range (3–5 digits) is an Excel
//     day-count offset from 1899-12-30;
//  3. an all-digit string (possibly a float-serialized integer like
//     "04092025.0") is zero-padded to 8 digits and tried as
//     day-month-year, then year-month-day;
//  4. a d-m-yyyy shape with slash, hyphen or dot separators is parsed
//     day-first: "04/09/2025", "04-09-2025" and "04.09.2025" are all
//     4 September, never April 9;
//  5. anything else gets a free-form parse, still preferring day-first
//     where the layout is ambiguous.
//
// Unresolvable input returns (zero, false), never an error; callers
// exclude unresolved dates from date filters and keep the records in
// unfiltered listings.
func ResolveDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return day(x), true
	case float64:
		if x == math.Trunc(x) && x >= 100 && x <= 99999 {
			return serialDate(int(x)), true
		}
	case int:
		if x >= 100 && x <= 99999 {
			return serialDate(x), true
		}
	case int64:
		if x >= 100 && x <= 99999 {
			return serialDate(int(x)), true
		}
	}

	s := Digits(strings.TrimSpace(Value(v)))
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return time.Time{}, false
	}

	if serialRE.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err == nil {
			return serialDate(n), true
		}
	}

	if digitsRE.MatchString(s) {
		whole, _, _ := strings.Cut(s, ".")
		if len(whole) < 8 {
			whole = strings.Repeat("0", 8-len(whole)) + whole
		}
		for _, layout := range []string{"02012006", "20060102"} {
			if t, err := time.Parse(layout, whole); err == nil {
				return day(t), true
			}
		}
	}

	// dateparse alone does not apply the day-first convention to hyphen
	// or dot separators, so the documented shapes are parsed explicitly.
	if m := dayFirstRE.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+m[3])
		if err != nil {
			return time.Time{}, false
		}
		return day(t), true
	}

	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return day(t), true
}

// FormatDate renders a resolved date the way records display it; the
// zero value renders as the explicit empty marker.
func FormatDate(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

func serialDate(n int) time.Time {
	return excelEpoch.AddDate(0, 0, n)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
