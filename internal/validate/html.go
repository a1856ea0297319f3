package validate

import (
	"fmt"
	"html"
)

// SanitizeHTML escapes a value for safe display in HTML contexts (XSS
// prevention). Non-string values are coerced via their default string
// representation before escaping. The characters & < > " ' become HTML
// entities.
//
// This is pure output encoding. It is NOT a substitute for the input
// validators: dangerous input is rejected at the boundary AND escaped on
// output (defense in depth).
func SanitizeHTML(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return html.EscapeString(s)
}
