package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrConflict           = errors.New("conflict")            // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrUnauthenticated    = errors.New("unauthenticated")     // 401
	ErrForbidden          = errors.New("forbidden")           // 403
)

var (
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrAdminExists       = fmt.Errorf("%w: admin already exists", ErrConflict)
	ErrDuplicateCategory = fmt.Errorf("%w: category already exists", ErrConflict)
	ErrCategoryInUse     = fmt.Errorf("%w: category still has products", ErrConflict)

	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category not found", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("%w: product not found", ErrNotFound)
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
