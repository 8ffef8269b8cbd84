package catalog

import (
	"regexp"
	"strings"

	"scholarship_catalog/internal/domain"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s_-]`)
	separatorRuns = regexp.MustCompile(`[\s_-]+`)
	validSlug     = regexp.MustCompile(`^[a-z0-9-]+$`)
	numericID     = regexp.MustCompile(`^\d+$`)
)

// Path is the canonical display path of r: the slug when there is one,
// otherwise the numeric detail page, otherwise the site root.
func Path(r domain.Scholarship) string {
	if slug := strings.TrimSpace(r.Slug); slug != "" {
		return "/" + slug
	}
	if id := strings.TrimSpace(r.ID); id != "" {
		return "/scholarship/" + id
	}
	return "/"
}

// Slugify turns a title into a URL-safe slug.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = separatorRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func IsValidSlug(s string) bool {
	return validSlug.MatchString(s)
}

func IsNumericID(s string) bool {
	return numericID.MatchString(s)
}
