package text

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case is a CSS text-transform value.
type Case string

const (
	CaseNone       Case = "none"
	CaseUppercase  Case = "uppercase"
	CaseLowercase  Case = "lowercase"
	CaseCapitalize Case = "capitalize"
)

// Apply transforms s. Unknown values leave s unchanged. Capitalize
// uppercases the first letter of every word and leaves the rest alone.
func (c Case) Apply(s string) string {
	switch Case(strings.ToLower(string(c))) {
	case CaseUppercase:
		return cases.Upper(language.Und).String(s)
	case CaseLowercase:
		return cases.Lower(language.Und).String(s)
	case CaseCapitalize:
		return cases.Title(language.Und, cases.NoLower).String(s)
	}
	return s
}

// Truncate returns s cut to at most n runes. n <= 0 means no limit.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
