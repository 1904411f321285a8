// Package sanitize cleans text that arrives from imported calendar documents
// and client-submitted notes. Uses bluemonday: names and titles are reduced
// to plain text, descriptions keep safe formatting only.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are built once; bluemonday policies are safe for concurrent use.
var (
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
	policyOnce   sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		ugcPolicy = bluemonday.UGCPolicy()
		// Foundry descriptions use classes for alignment.
		ugcPolicy.AllowAttrs("class").Globally()
	})
	return strictPolicy, ugcPolicy
}

// PlainText strips all markup from s and collapses runs of whitespace.
// Entities are decoded, so "Fish &amp; Chips" becomes "Fish & Chips".
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	strict, _ := policies()
	text := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// HTML removes dangerous elements (script, iframe, event handlers,
// javascript: URLs) from s while keeping safe formatting tags.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	_, ugc := policies()
	return ugc.Sanitize(s)
}
