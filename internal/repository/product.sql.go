package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `-- name: InsertProduct :one
WITH inserted AS (
    INSERT INTO products (shop_id, name, description, category, price, quantity, image_data, image_content_type)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id, shop_id, name, description, category, price, quantity, image_content_type, created_at, updated_at
)
SELECT i.id, i.shop_id, s.name, i.name, i.description, i.category, i.price, i.quantity, i.image_content_type, i.created_at, i.updated_at
FROM inserted i
JOIN shops s ON s.id = i.shop_id
`

type InsertProductParams struct {
	ShopID           uuid.UUID      `json:"shop_id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Price            pgtype.Numeric `json:"price"`
	Quantity         int32          `json:"quantity"`
	ImageData        []byte         `json:"image_data"`
	ImageContentType string         `json:"image_content_type"`
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, insertProduct,
		arg.ShopID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Price,
		arg.Quantity,
		arg.ImageData,
		arg.ImageContentType,
	)
	return scanProduct(row)
}

const findProductById = `-- name: FindProductById :one
SELECT p.id, p.shop_id, s.name, p.name, p.description, p.category, p.price, p.quantity, p.image_content_type, p.created_at, p.updated_at
FROM products p
JOIN shops s ON s.id = p.shop_id
WHERE p.id = $1
`

func (q *Queries) FindProductById(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findProductById, id)
	return scanProduct(row)
}

const findProductImage = `-- name: FindProductImage :one
SELECT image_data, image_content_type
FROM products
WHERE id = $1
`

type FindProductImageRow struct {
	ImageData        []byte `json:"image_data"`
	ImageContentType string `json:"image_content_type"`
}

func (q *Queries) FindProductImage(ctx context.Context, id uuid.UUID) (FindProductImageRow, error) {
	row := q.db.QueryRow(ctx, findProductImage, id)
	var i FindProductImageRow
	err := row.Scan(&i.ImageData, &i.ImageContentType)
	return i, err
}

const findProductsByIds = `-- name: FindProductsByIds :many
SELECT p.id, p.shop_id, s.name, p.name, p.description, p.category, p.price, p.quantity, p.image_content_type, p.created_at, p.updated_at
FROM products p
JOIN shops s ON s.id = p.shop_id
WHERE p.id = ANY($1::uuid[])
`

func (q *Queries) FindProductsByIds(ctx context.Context, ids []string) ([]Product, error) {
	rows, err := q.db.Query(ctx, findProductsByIds, ids)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const findProductsByShopId = `-- name: FindProductsByShopId :many
SELECT p.id, p.shop_id, s.name, p.name, p.description, p.category, p.price, p.quantity, p.image_content_type, p.created_at, p.updated_at
FROM products p
JOIN shops s ON s.id = p.shop_id
WHERE p.shop_id = $1
ORDER BY p.created_at DESC
`

func (q *Queries) FindProductsByShopId(ctx context.Context, shopID uuid.UUID) ([]Product, error) {
	rows, err := q.db.Query(ctx, findProductsByShopId, shopID)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const findLatestProducts = `-- name: FindLatestProducts :many
SELECT p.id, p.shop_id, s.name, p.name, p.description, p.category, p.price, p.quantity, p.image_content_type, p.created_at, p.updated_at
FROM products p
JOIN shops s ON s.id = p.shop_id
ORDER BY p.created_at DESC
LIMIT $1
`

func (q *Queries) FindLatestProducts(ctx context.Context, limit int32) ([]Product, error) {
	rows, err := q.db.Query(ctx, findLatestProducts, limit)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const findRelatedProducts = `-- name: FindRelatedProducts :many
SELECT p.id, p.shop_id, s.name, p.name, p.description, p.category, p.price, p.quantity, p.image_content_type, p.created_at, p.updated_at
FROM products p
JOIN shops s ON s.id = p.shop_id
WHERE p.category = $1 AND p.id <> $2
ORDER BY p.created_at DESC
LIMIT $3
`

type FindRelatedProductsParams struct {
	Category string    `json:"category"`
	ID       uuid.UUID `json:"id"`
	Limit    int32     `json:"limit"`
}

func (q *Queries) FindRelatedProducts(ctx context.Context, arg FindRelatedProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, findRelatedProducts, arg.Category, arg.ID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const findProductCategories = `-- name: FindProductCategories :many
SELECT DISTINCT category
FROM products
WHERE category <> ''
ORDER BY category
`

func (q *Queries) FindProductCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, findProductCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchProducts = `-- name: SearchProducts :many
SELECT p.id, p.shop_id, s.name, p.name, p.description, p.category, p.price, p.quantity, p.image_content_type, p.created_at, p.updated_at
FROM products p
JOIN shops s ON s.id = p.shop_id
WHERE ($1::text = '' OR p.name ILIKE '%' || $1::text || '%')
  AND ($2::text = '' OR p.category = $2::text)
ORDER BY p.created_at DESC
`

type SearchProductsParams struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

func (q *Queries) SearchProducts(ctx context.Context, arg SearchProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, searchProducts, arg.Search, arg.Category)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

const updateProduct = `-- name: UpdateProduct :one
WITH updated AS (
    UPDATE products
    SET name = $3, description = $4, category = $5, price = $6, quantity = $7, updated_at = now()
    WHERE id = $1 AND shop_id = $2
    RETURNING id, shop_id, name, description, category, price, quantity, image_content_type, created_at, updated_at
)
SELECT u.id, u.shop_id, s.name, u.name, u.description, u.category, u.price, u.quantity, u.image_content_type, u.created_at, u.updated_at
FROM updated u
JOIN shops s ON s.id = u.shop_id
`

type UpdateProductParams struct {
	ID          uuid.UUID      `json:"id"`
	ShopID      uuid.UUID      `json:"shop_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Price       pgtype.Numeric `json:"price"`
	Quantity    int32          `json:"quantity"`
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.ShopID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Price,
		arg.Quantity,
	)
	return scanProduct(row)
}

const updateProductImage = `-- name: UpdateProductImage :exec
UPDATE products
SET image_data = $3, image_content_type = $4, updated_at = now()
WHERE id = $1 AND shop_id = $2
`

type UpdateProductImageParams struct {
	ID               uuid.UUID `json:"id"`
	ShopID           uuid.UUID `json:"shop_id"`
	ImageData        []byte    `json:"image_data"`
	ImageContentType string    `json:"image_content_type"`
}

func (q *Queries) UpdateProductImage(ctx context.Context, arg UpdateProductImageParams) error {
	_, err := q.db.Exec(ctx, updateProductImage,
		arg.ID,
		arg.ShopID,
		arg.ImageData,
		arg.ImageContentType,
	)
	return err
}

const deleteProduct = `-- name: DeleteProduct :one
DELETE FROM products
WHERE id = $1 AND shop_id = $2
RETURNING id
`

type DeleteProductParams struct {
	ID     uuid.UUID `json:"id"`
	ShopID uuid.UUID `json:"shop_id"`
}

func (q *Queries) DeleteProduct(ctx context.Context, arg DeleteProductParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteProduct, arg.ID, arg.ShopID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.ShopID,
		&i.ShopName,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.Price,
		&i.Quantity,
		&i.ImageContentType,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
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
