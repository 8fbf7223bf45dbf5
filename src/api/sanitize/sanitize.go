// Package sanitize holds the HTML policies applied to user-submitted text
// before storage.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	rich   = newRichPolicy()
)

// newRichPolicy allows the fixed inline/formatting subset permitted in
// descriptions, commitments and rejection reasons. No attributes survive.
func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "b", "i", "u", "ul", "ol", "li")
	return p
}

// Title strips all markup.
func Title(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Rich keeps the allowed formatting tags and drops everything else.
func Rich(s string) string {
	return strings.TrimSpace(rich.Sanitize(s))
}

// Plain reduces rich text to its bare text, used to decide whether content
// is empty once the markup is gone.
func Plain(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
