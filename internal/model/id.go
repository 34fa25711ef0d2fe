package model

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when an identifier string is structurally invalid.
// A well-formed id that does not exist is the storage layer's concern, not
// this one's.
var ErrInvalidID = errors.New("invalid device id")

// ParseID validates an external identifier string and returns its canonical
// form.
func ParseID(s string) (string, error) {
	if len(s) != 36 {
		return "", ErrInvalidID
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidID
	}
	return u.String(), nil
}
