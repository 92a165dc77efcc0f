package errors

import (
	"errors"
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

var (
	ErrOrderNotFound    = fmt.Errorf("order %w", inErrors.ErrNotFound)
	ErrLineNotFound     = fmt.Errorf("order line %w", inErrors.ErrNotFound)
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrProductNotInShop = errors.New("product does not belong to the ordered shop")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrQuantityMismatch = errors.New("cancelled quantity does not match the order line")
)
