package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors forming the service-level taxonomy. Handlers map these to
// HTTP status codes in one place; services wrap them with context via %w so
// the user-visible message stays specific.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
)

// notFoundOrStore translates a gorm read error: missing rows become the
// NotFound sentinel, anything else passes through as a store failure.
func notFoundOrStore(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
