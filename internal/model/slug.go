package model

import (
	"regexp"
	"strings"
)

var slugStrip = regexp.MustCompile(`[^\w-]+`)

// DeriveSlug builds a URL-safe slug from an event name: lower-cased,
// spaces turned into hyphens, anything else non-word stripped. Same input
// always yields the same slug.
func DeriveSlug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	return slugStrip.ReplaceAllString(s, "")
}
