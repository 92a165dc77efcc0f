package inventory

import (
	"errors"
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

var (
	ErrOutOfStock      = errors.New("product out of stock")
	ErrProductNotFound = fmt.Errorf("product %w", inErrors.ErrNotFound)
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)
