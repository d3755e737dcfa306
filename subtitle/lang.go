package subtitle

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Label returns the English name of a language code, e.g. "English" for "en".
// Unknown codes are returned upper-cased.
func Label(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}

	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
