package utils

import (
	"errors"
	"strconv"
)

var ErrInvalidID = errors.New("invalid identifier")

// ParseID parses a path identifier as a positive base-10 int64. Signs,
// leading/trailing garbage and values above 2^63-1 are all rejected, so a
// stored parent id can never be compared against an overflowed path id.
func ParseID(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrInvalidID
	}

	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, ErrInvalidID
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)

	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}
