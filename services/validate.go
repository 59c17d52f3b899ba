// services/validate.go
package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

const MaxNameLength = 64

// normalizePlayerID returns the canonical form of a player UUID.
func normalizePlayerID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", InvalidArgument("player_id must be a UUID")
	}
	return parsed.String(), nil
}

// validateCatalogID checks that a bicycle or mission id looks like a catalog key.
func validateCatalogID(field, id string) error {
	if id == "" {
		return InvalidArgument("%s is required", field)
	}
	if !slug.IsSlug(id) {
		return InvalidArgument("%s %q is not a valid identifier", field, id)
	}
	return nil
}

// NormalizeName trims and NFC-normalises a display name and enforces its length.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", InvalidArgument("name is required")
	}
	if !utf8.ValidString(name) {
		return "", InvalidArgument("name must be valid UTF-8")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", InvalidArgument("name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}

func validateCoordinate(axis string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidArgument("%s must be a finite number", axis)
	}
	return nil
}
