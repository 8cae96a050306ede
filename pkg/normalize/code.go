package normalize

import (
	"regexp"
	"strings"
)

// codeRE matches an ICD-10-like clinical code: one letter, one or two
// digits, optional decimal qualifier (E11, E03.9, J45.901).
var codeRE = regexp.MustCompile(`[A-Za-z][0-9]{1,2}(?:\.[0-9]+)?`)

// listSeps are the characters fields use to pack several codes or
// descriptions into one cell.
const listSeps = "\n|;,،("

// Code is a canonical clinical code with its pre-decimal root projection.
type Code struct {
	Full string `json:"full"`
	Root string `json:"root"`
}

// ExtractCode finds the first clinical code in free text. When no code
// pattern is present it falls back to the upper-cased normalized text,
// so the result is total over all inputs; source cells are not
// guaranteed to contain a valid code.
func ExtractCode(text string) Code {
	if m := codeRE.FindString(text); m != "" {
		full := strings.ToUpper(m)
		root, _, _ := strings.Cut(full, ".")
		return Code{Full: full, Root: root}
	}
	full := strings.ToUpper(Text(text))
	root, _, _ := strings.Cut(full, ".")
	return Code{Full: full, Root: root}
}

// FirstCode truncates the input at the first newline or list separator
// before extraction, for cells that pack multiple codes; only the first
// one is returned.
func FirstCode(text string) Code {
	if i := strings.IndexAny(text, listSeps); i >= 0 {
		text = text[:i]
	}
	return ExtractCode(text)
}
