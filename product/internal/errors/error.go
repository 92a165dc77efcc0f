package errors

import (
	"errors"
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

var (
	ErrProductNotFound = fmt.Errorf("product %w", inErrors.ErrNotFound)
	ErrShopNotFound    = fmt.Errorf("shop %w", inErrors.ErrNotFound)
	ErrInvalidForm     = errors.New("invalid product form")
	ErrInvalidImage    = errors.New("invalid product image")
)
