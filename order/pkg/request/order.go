package request

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Address struct {
	Street  string `validate:"max=255" json:"street"`
	City    string `validate:"max=255" json:"city"`
	State   string `validate:"max=255" json:"state"`
	Zipcode string `validate:"max=32"  json:"zipcode"`
	Country string `validate:"max=255" json:"country"`
}

type OrderLine struct {
	ProductID uuid.UUID `validate:"required" json:"product_id"`
	Quantity  int32     `validate:"gte=1"    json:"quantity"`
}

// Order is a checkout of the cart lines of a single shop.
type Order struct {
	ShopID          uuid.UUID   `validate:"required"            json:"shop_id"`
	CustomerName    string      `validate:"required,max=255"    json:"customer_name"`
	Email           string      `validate:"required,email"      json:"email"`
	DeliveryAddress Address     `                               json:"delivery_address"`
	Lines           []OrderLine `validate:"required,min=1,dive" json:"lines"`
}

type CreateOrder struct {
	Order Order  `json:"order"`
	Token string `json:"token"`
}

func (o CreateOrder) MarshalZerologObject(e *zerolog.Event) {
	e.Str("shop_id", o.Order.ShopID.String()).
		Str("email", o.Order.Email).
		Int("lines", len(o.Order.Lines)).
		Str("token", "***")
}

type CancelProduct struct {
	OrderID  uuid.UUID `validate:"required" json:"order_id"`
	LineID   uuid.UUID `validate:"required" json:"line_id"`
	Quantity int32     `validate:"gte=1"    json:"quantity"`
}

// ProcessCharge records a payment charge; LineID scopes it to a single line.
type ProcessCharge struct {
	LineID   *uuid.UUID      `                            json:"line_id,omitempty"`
	ChargeID string          `validate:"required,max=255" json:"charge_id"`
	Amount   decimal.Decimal `                            json:"amount"`
	Status   string          `validate:"required,max=64"  json:"status"`
}

// UpdateStatus changes the status of a line when LineID is set, otherwise of the whole order.
type UpdateStatus struct {
	OrderID uuid.UUID  `validate:"required" json:"order_id"`
	LineID  *uuid.UUID `                    json:"line_id,omitempty"`
	Status  string     `validate:"required" json:"status"`
}
