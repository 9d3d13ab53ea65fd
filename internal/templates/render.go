// Package templates provides the message templates bounded context module.
package templates

import "strings"

// Render substitutes the {lead_name} placeholder in template text.
// Substitution is literal; unknown placeholders pass through untouched.
func Render(text, leadName string) string {
	return strings.ReplaceAll(text, "{lead_name}", leadName)
}
