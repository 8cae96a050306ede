package normalize

import (
	"regexp"
	"strings"
)

// longDigits matches registration/contract number runs that add noise,
// not identity, to an organization name.
var longDigits = regexp.MustCompile(`[0-9]{3,}`)

// keyStopWords is corporate boilerplate in both scripts; the Arabic
// entries are the post-Text forms (ة already folded to ه).
var keyStopWords = map[string]struct{}{
	"co": {}, "company": {}, "insurance": {}, "cooperative": {},
	"co-operative": {}, "coop": {}, "inc": {}, "ltd": {}, "limited": {},
	"sa": {}, "ksa": {},
	"شركه": {}, "تعاونيه": {}, "تامين": {}, "تعاوني": {}, "محدوده": {},
}

// Key builds a loose matching key for organization, company and
// claim-type names: normalized text with long digit runs, residual
// punctuation and boilerplate stop words removed.
// Key is idempotent: its output contains no digit run of length >= 3,
// no stop word and no non-alphanumeric separator, so a second pass
// changes nothing.
func Key(text string) string {
	t := Text(text)
	t = longDigits.ReplaceAllString(t, " ")
	t = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 0x0600 && r <= 0x06FF:
			return r
		}
		return ' '
	}, t)

	fields := strings.Fields(t)
	kept := fields[:0]
	for _, tok := range fields {
		if _, ok := keyStopWords[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
