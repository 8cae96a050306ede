package normalize

import "strings"

// honorifics is the closed set of title tokens dropped from person names.
// Comparison happens on the lower-cased, period-trimmed token, so the
// dotted forms only matter for inputs where the dot survives splitting.
var honorifics = map[string]struct{}{
	"dr": {}, "dr.": {}, "doctor": {},
	"prof": {}, "prof.": {},
	"mr": {}, "mrs": {}, "ms": {},
	"د": {}, "د.": {}, "دكتور": {}, "الدكتور": {},
	"أ.": {}, "أ.د": {}, "بروف": {}, "البروف": {}, "أستاذ": {},
}

// StripTitles removes honorific tokens from a person name wherever they
// occur, not only as a prefix; source data scatters titles mid-string.
// Remaining tokens keep their original form and relative order. A name
// consisting only of honorifics comes back empty; callers must treat an
// empty normalized name as "no match", never as "matches everything".
func StripTitles(name string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '_', '.', ',', ';', ':':
			return ' '
		}
		return r
	}, strings.TrimSpace(name))

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, tok := range fields {
		key := strings.ToLower(strings.Trim(tok, "."))
		if _, ok := honorifics[key]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// Name is the matching projection of a person name with titles removed.
func Name(v any) string {
	return Text(StripTitles(Value(v)))
}

// NameRaw is the matching projection of a person name with titles kept.
// Both forms are indexed so a query like "dr ahmed" still lands.
func NameRaw(v any) string {
	return Text(Value(v))
}
