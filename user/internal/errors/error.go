package errors

import (
	"errors"
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

var (
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrUserNotFound     = fmt.Errorf("user %w", inErrors.ErrNotFound)
	ErrEmailExist       = errors.New("email already exist")
)
