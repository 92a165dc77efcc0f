package errors

import (
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

var (
	ErrShopNotFound  = fmt.Errorf("shop %w", inErrors.ErrNotFound)
	ErrOwnerNotFound = fmt.Errorf("shop owner %w", inErrors.ErrNotFound)
	ErrNotSeller     = fmt.Errorf("only sellers can open a shop: %w", inErrors.ErrForbidden)
)
