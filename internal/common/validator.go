package common

import (
	"errors"
	"strconv"
)

// ValidateMediaType checks if the media type is valid.
// It expects 'tv' and 'movie' as valid types.
func ValidateMediaType(t string) error {
	if t != "tv" && t != "movie" {
		return errors.New("invalid media type, only tv and movie are supported")
	}

	return nil
}

// ParseTitleID parses and validates a TMDB title ID path parameter.
// It ensures the ID is a positive numeric value.
func ParseTitleID(id string) (int, error) {
	v, err := strconv.Atoi(id)
	if err != nil {
		return 0, errors.New("invalid title id, not a number")
	}

	if v <= 0 {
		return 0, errors.New("invalid title id, less than or equal to 0")
	}

	return v, nil
}

// ValidateSelectedIDs checks that at least one seed title was selected.
func ValidateSelectedIDs(ids []int) error {
	if len(ids) == 0 {
		return errors.New("selected_ids must not be empty")
	}

	for _, id := range ids {
		if id <= 0 {
			return errors.New("selected_ids must contain positive title ids")
		}
	}

	return nil
}
