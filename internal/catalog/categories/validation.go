package categories

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrBadRequest)
	}
	if !slugPattern.MatchString(c.Slug) {
		return fmt.Errorf("%w: slug must be lowercase words separated by hyphens", shared.ErrBadRequest)
	}
	return nil
}

// Slugify derives a URL slug from a display name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
