package services

import (
	"regexp"
	"strings"
)

var (
	casSuffix  = regexp.MustCompile(`(\d+-\d+-\d+)$`)
	casNumber  = regexp.MustCompile(`^\d+-\d+-\d+$`)
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug builds the public lookup key for a product: the lower-cased name with
// every non-alphanumeric run collapsed to "-", followed by the CAS number.
func Slug(name, cas string) string {
	base := strings.Trim(nonSlugRun.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		return cas
	}
	return base + "-" + cas
}

// CASFromSlug extracts the trailing CAS number from a product slug.
func CASFromSlug(slug string) (string, bool) {
	m := casSuffix.FindStringSubmatch(slug)
	if m == nil {
		return "", false
	}
	return m[1], true
}
