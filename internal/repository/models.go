package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID        uuid.UUID          `json:"id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Password  string             `json:"password"`
	Seller    bool               `json:"seller"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Shop struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

// Product carries the name of its shop; ImageData is only populated by FindProductImage.
type Product struct {
	ID               uuid.UUID          `json:"id"`
	ShopID           uuid.UUID          `json:"shop_id"`
	ShopName         string             `json:"shop_name"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Category         string             `json:"category"`
	Price            pgtype.Numeric     `json:"price"`
	Quantity         int32              `json:"quantity"`
	ImageData        []byte             `json:"image_data"`
	ImageContentType string             `json:"image_content_type"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type Order struct {
	ID              uuid.UUID          `json:"id"`
	UserID          uuid.UUID          `json:"user_id"`
	ShopID          uuid.UUID          `json:"shop_id"`
	CustomerName    string             `json:"customer_name"`
	Email           string             `json:"email"`
	DeliveryAddress []byte             `json:"delivery_address"`
	PaymentToken    string             `json:"payment_token"`
	Amount          pgtype.Numeric     `json:"amount"`
	Status          string             `json:"status"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}

type OrderLine struct {
	ID          uuid.UUID          `json:"id"`
	OrderID     uuid.UUID          `json:"order_id"`
	Position    int32              `json:"position"`
	ProductID   uuid.UUID          `json:"product_id"`
	ProductName string             `json:"product_name"`
	Price       pgtype.Numeric     `json:"price"`
	Quantity    int32              `json:"quantity"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type OrderCharge struct {
	ID        uuid.UUID          `json:"id"`
	OrderID   uuid.UUID          `json:"order_id"`
	LineID    pgtype.UUID        `json:"line_id"`
	UserID    uuid.UUID          `json:"user_id"`
	ChargeID  string             `json:"charge_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Status    string             `json:"status"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}
