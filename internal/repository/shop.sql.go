package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const insertShop = `-- name: InsertShop :one
INSERT INTO shops (owner_id, name, description)
VALUES ($1, $2, $3)
RETURNING id, owner_id, name, description, created_at, updated_at
`

type InsertShopParams struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func (q *Queries) InsertShop(ctx context.Context, arg InsertShopParams) (Shop, error) {
	row := q.db.QueryRow(ctx, insertShop, arg.OwnerID, arg.Name, arg.Description)
	var i Shop
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findShopById = `-- name: FindShopById :one
SELECT id, owner_id, name, description, created_at, updated_at
FROM shops
WHERE id = $1
`

func (q *Queries) FindShopById(ctx context.Context, id uuid.UUID) (Shop, error) {
	row := q.db.QueryRow(ctx, findShopById, id)
	var i Shop
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findShops = `-- name: FindShops :many
SELECT id, owner_id, name, description, created_at, updated_at
FROM shops
ORDER BY created_at DESC
`

func (q *Queries) FindShops(ctx context.Context) ([]Shop, error) {
	rows, err := q.db.Query(ctx, findShops)
	if err != nil {
		return nil, err
	}
	return scanShops(rows)
}

const findShopsByOwnerId = `-- name: FindShopsByOwnerId :many
SELECT id, owner_id, name, description, created_at, updated_at
FROM shops
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (q *Queries) FindShopsByOwnerId(ctx context.Context, ownerID uuid.UUID) ([]Shop, error) {
	rows, err := q.db.Query(ctx, findShopsByOwnerId, ownerID)
	if err != nil {
		return nil, err
	}
	return scanShops(rows)
}

func scanShops(rows pgx.Rows) ([]Shop, error) {
	defer rows.Close()
	items := []Shop{}
	for rows.Next() {
		var i Shop
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Name,
			&i.Description,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
