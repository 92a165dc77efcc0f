package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/repository"
)

type Seed struct {
	UserID uuid.UUID
	ShopID uuid.UUID
}

// SeedShop inserts a user owning one shop.
func SeedShop(t *testing.T, c context.Context, queries *repository.Queries) Seed {
	t.Helper()

	user, err := queries.InsertUser(c, repository.InsertUserParams{
		Username: "seller",
		Email:    fmt.Sprintf("seller-%s@mail.com", uuid.NewString()),
		Password: "hashed",
		Seller:   true,
	})
	if err != nil {
		t.Fatalf("failed seeding user with error: %s", err)
	}

	shop, err := queries.InsertShop(c, repository.InsertShopParams{
		OwnerID:     user.ID,
		Name:        "seeded shop",
		Description: "shop used by tests",
	})
	if err != nil {
		t.Fatalf("failed seeding shop with error: %s", err)
	}

	return Seed{UserID: user.ID, ShopID: shop.ID}
}

// SeedProduct inserts a product with the given stock and price.
func SeedProduct(
	t *testing.T,
	c context.Context,
	queries *repository.Queries,
	shopID uuid.UUID,
	name string,
	quantity int32,
	price string,
) repository.Product {
	t.Helper()

	product, err := queries.InsertProduct(c, repository.InsertProductParams{
		ShopID:   shopID,
		Name:     name,
		Category: "kitchen",
		Price:    repository.NumericFromDecimal(decimal.RequireFromString(price)),
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("failed seeding product with error: %s", err)
	}
	return product
}
