package entry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEntry is matched by every ValidationError via errors.Is.
var ErrInvalidEntry = errors.New("invalid entry")

// ValidationError describes why a submission was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// Validate applies the submission rule shared by every front end.
// It returns the normalised category and the content to store: content is kept
// verbatim for OtherCategory and dropped for every other category.
func Validate(catalog Catalog, category, content string) (string, string, error) {
	category = NormalizeCategory(category)
	if category == "" {
		return "", "", &ValidationError{Field: "category", Message: "category is required"}
	}
	if !catalog.Contains(category) {
		return "", "", &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	if category != OtherCategory {
		return category, "", nil
	}
	if strings.TrimSpace(content) == "" {
		return "", "", &ValidationError{Field: "content", Message: "content is required for " + OtherCategory}
	}
	return category, content, nil
}
