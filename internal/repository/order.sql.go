package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, shop_id, customer_name, email, delivery_address, payment_token, amount, status, created_at, updated_at`

const orderLineColumns = `id, order_id, position, product_id, product_name, price, quantity, status, created_at, updated_at`

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (user_id, shop_id, customer_name, email, delivery_address, payment_token, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns

type InsertOrderParams struct {
	UserID          uuid.UUID      `json:"user_id"`
	ShopID          uuid.UUID      `json:"shop_id"`
	CustomerName    string         `json:"customer_name"`
	Email           string         `json:"email"`
	DeliveryAddress []byte         `json:"delivery_address"`
	PaymentToken    string         `json:"payment_token"`
	Amount          pgtype.Numeric `json:"amount"`
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.UserID,
		arg.ShopID,
		arg.CustomerName,
		arg.Email,
		arg.DeliveryAddress,
		arg.PaymentToken,
		arg.Amount,
	)
	return scanOrder(row)
}

const insertOrderLine = `-- name: InsertOrderLine :one
INSERT INTO order_lines (order_id, position, product_id, product_name, price, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderLineColumns

type InsertOrderLineParams struct {
	OrderID     uuid.UUID      `json:"order_id"`
	Position    int32          `json:"position"`
	ProductID   uuid.UUID      `json:"product_id"`
	ProductName string         `json:"product_name"`
	Price       pgtype.Numeric `json:"price"`
	Quantity    int32          `json:"quantity"`
}

// InsertOrderLines sends every line in one batch and returns them in input order.
func (q *Queries) InsertOrderLines(ctx context.Context, args []InsertOrderLineParams) ([]OrderLine, error) {
	batch := &pgx.Batch{}
	for _, arg := range args {
		batch.Queue(insertOrderLine,
			arg.OrderID,
			arg.Position,
			arg.ProductID,
			arg.ProductName,
			arg.Price,
			arg.Quantity,
		)
	}
	results := q.db.SendBatch(ctx, batch)
	defer results.Close()

	items := make([]OrderLine, 0, len(args))
	for range args {
		i, err := scanOrderLine(results.QueryRow())
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, nil
}

const findOrderById = `-- name: FindOrderById :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) FindOrderById(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, findOrderById, id)
	return scanOrder(row)
}

const findOrdersByShopId = `-- name: FindOrdersByShopId :many
SELECT ` + orderColumns + `
FROM orders
WHERE shop_id = $1
ORDER BY created_at DESC, id
`

func (q *Queries) FindOrdersByShopId(ctx context.Context, shopID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, findOrdersByShopId, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findOrderLinesByOrderIds = `-- name: FindOrderLinesByOrderIds :many
SELECT ` + orderLineColumns + `
FROM order_lines
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position
`

func (q *Queries) FindOrderLinesByOrderIds(ctx context.Context, orderIDs []string) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, findOrderLinesByOrderIds, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderLine{}
	for rows.Next() {
		i, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	return scanOrder(row)
}

const updateOrderLineStatus = `-- name: UpdateOrderLineStatus :one
UPDATE order_lines
SET status = $3, updated_at = now()
WHERE id = $1 AND order_id = $2
RETURNING ` + orderLineColumns

type UpdateOrderLineStatusParams struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

func (q *Queries) UpdateOrderLineStatus(ctx context.Context, arg UpdateOrderLineStatusParams) (OrderLine, error) {
	row := q.db.QueryRow(ctx, updateOrderLineStatus, arg.ID, arg.OrderID, arg.Status)
	return scanOrderLine(row)
}

const insertOrderCharge = `-- name: InsertOrderCharge :one
INSERT INTO order_charges (order_id, line_id, user_id, charge_id, amount, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, line_id, user_id, charge_id, amount, status, created_at
`

type InsertOrderChargeParams struct {
	OrderID  uuid.UUID      `json:"order_id"`
	LineID   pgtype.UUID    `json:"line_id"`
	UserID   uuid.UUID      `json:"user_id"`
	ChargeID string         `json:"charge_id"`
	Amount   pgtype.Numeric `json:"amount"`
	Status   string         `json:"status"`
}

func (q *Queries) InsertOrderCharge(ctx context.Context, arg InsertOrderChargeParams) (OrderCharge, error) {
	row := q.db.QueryRow(ctx, insertOrderCharge,
		arg.OrderID,
		arg.LineID,
		arg.UserID,
		arg.ChargeID,
		arg.Amount,
		arg.Status,
	)
	var i OrderCharge
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.LineID,
		&i.UserID,
		&i.ChargeID,
		&i.Amount,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ShopID,
		&i.CustomerName,
		&i.Email,
		&i.DeliveryAddress,
		&i.PaymentToken,
		&i.Amount,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanOrderLine(row pgx.Row) (OrderLine, error) {
	var i OrderLine
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Position,
		&i.ProductID,
		&i.ProductName,
		&i.Price,
		&i.Quantity,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
