package service

import (
	"errors"
	"fmt"

	"storefront-service/internal/store"
)

// Error taxonomy the HTTP layer maps to status codes: validation → 400,
// not found → 404, conflict → 409, anything else → 500.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrNotFound)
}

func isStockError(err error) bool {
	return errors.Is(err, store.ErrInsufficientStock)
}

// fromStore lifts store sentinels into the service taxonomy, keeping
// the original message in the chain.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, store.ErrInsufficientStock):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}
