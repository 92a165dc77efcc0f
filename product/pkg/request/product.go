package request

import (
	"github.com/shopspring/decimal"
)

const CategoryAll = "All"

type Image struct {
	Data        []byte
	ContentType string
}

type InsertProduct struct {
	Name        string          `validate:"required,max=255" json:"name"`
	Description string          `validate:"max=2000"         json:"description"`
	Category    string          `validate:"max=255"          json:"category"`
	Price       decimal.Decimal `                            json:"price"`
	Quantity    int32           `validate:"gte=0"            json:"quantity"`
	Image       *Image          `                            json:"-"`
}

// UpdateProduct only changes the fields that are set.
type UpdateProduct struct {
	Name        *string          `validate:"omitempty,min=1,max=255" json:"name"`
	Description *string          `validate:"omitempty,max=2000"      json:"description"`
	Category    *string          `validate:"omitempty,max=255"       json:"category"`
	Price       *decimal.Decimal `                                   json:"price"`
	Quantity    *int32           `validate:"omitempty,gte=0"         json:"quantity"`
	Image       *Image           `                                   json:"-"`
}

type SearchProduct struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}
