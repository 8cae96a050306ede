// Package normalize turns raw, irregular field values from claim exports
// into canonical, comparable strings. The source data mixes Arabic and
// Latin scripts, inconsistent diacritics, Arabic-Indic digits and ad-hoc
// punctuation; every function here is total and deterministic so that
// derived projections can be rebuilt byte-identically from the same input.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// arabicMarks covers the combining marks used for short vowels and tanwin
// (U+064B–U+065F, U+0610–U+061A) plus the tatweel elongation character.
var arabicMarks = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0610, Hi: 0x061A, Stride: 1},
		{Lo: 0x0640, Hi: 0x0640, Stride: 1},
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
	},
}

var stripMarks = runes.Remove(runes.In(arabicMarks))

// foldRune maps Arabic letter variants to a canonical form, translates
// Arabic-Indic and Extended Arabic-Indic digits to ASCII, normalizes dash
// variants to a plain hyphen, and turns column-internal separators and
// sentence punctuation into spaces.
func foldRune(r rune) rune {
	switch r {
	case 'آ', 'أ', 'إ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	case '‐', '–', '—':
		return '-'
	case '\\', '/', '|':
		return ' '
	case '(', ')', ',', '.', ';', ':', '،', '؛':
		return ' '
	}
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
}

// Text canonicalizes a raw string: trim, Unicode lower-case, Arabic
// diacritic stripping, letter-variant folding, digit translation,
// separator and punctuation collapsing, whitespace collapsing.
// Empty input normalizes to "", never to anything containment-unsafe.
// Text is idempotent: Text(Text(s)) == Text(s).
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s, _, _ = transform.String(stripMarks, s)
	s = strings.Map(foldRune, s)
	return strings.Join(strings.Fields(s), " ")
}

// Digits translates Arabic-Indic and Extended Arabic-Indic digits to
// ASCII without touching anything else. Used before numeric parsing.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// Value renders an untyped cell to its display string. Cells arrive as
// strings from CSV, floats from xlsx, and assorted scalar types from
// SQL drivers; nil and NaN-ish values render as "".
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
