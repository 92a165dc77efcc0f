package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ShopID          uuid.UUID       `json:"shop_id"`
	CustomerName    string          `json:"customer_name"`
	Email           string          `json:"email"`
	DeliveryAddress Address         `json:"delivery_address"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Lines           []Line          `json:"lines"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Line struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	Status      string          `json:"status"`
}

// Event is published on the order events channel.
type Event struct {
	Type  string `json:"type"`
	Order Order  `json:"order"`
}
