package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/internal/testutil"
	"github.com/Alturino/storefront/product/assets"
	"github.com/Alturino/storefront/product/internal/cache"
	productErrors "github.com/Alturino/storefront/product/internal/errors"
	"github.com/Alturino/storefront/product/pkg/request"
)

func TestProductService(t *testing.T) {
	c := context.Background()
	pool := testutil.NewPostgres(t, c)
	queries := repository.New(pool)
	seed := testutil.SeedShop(t, c, queries)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	svc := NewProductService(pool, cache.NewProductCache(client, time.Minute))

	t.Run("given insert with image should store image and report it", func(t *testing.T) {
		product, err := svc.InsertProduct(c, seed.ShopID, request.InsertProduct{
			Name:     "lamp",
			Category: "lighting",
			Price:    decimal.RequireFromString("20.00"),
			Quantity: 2,
			Image:    &request.Image{Data: assets.DefaultImage, ContentType: "image/png"},
		})

		require.NoError(t, err)
		assert.True(t, product.HasImage)
		assert.Equal(t, "seeded shop", product.Shop.Name)
		data, contentType, err := svc.FindProductImage(c, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "image/png", contentType)
		assert.Equal(t, assets.DefaultImage, data)
	})

	t.Run("given insert for unknown shop should be not found", func(t *testing.T) {
		_, err := svc.InsertProduct(c, uuid.New(), request.InsertProduct{Name: "ghost"})

		assert.ErrorIs(t, err, productErrors.ErrShopNotFound)
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("given product without image should serve default image", func(t *testing.T) {
		mug := testutil.SeedProduct(t, c, queries, seed.ShopID, "mug", 3, "5.00")

		data, contentType, err := svc.FindProductImage(c, mug.ID)

		require.NoError(t, err)
		assert.Equal(t, assets.DefaultImageContentType, contentType)
		assert.Equal(t, assets.DefaultImage, data)
	})

	t.Run("given cached product should serve it from cache", func(t *testing.T) {
		bowl := testutil.SeedProduct(t, c, queries, seed.ShopID, "bowl", 3, "4.00")

		first, err := svc.FindProductById(c, bowl.ID)
		require.NoError(t, err)
		assert.True(t, mr.Exists(cache.Key(bowl.ID)))

		_, err = pool.Exec(c, "UPDATE products SET name = 'renamed' WHERE id = $1", bowl.ID)
		require.NoError(t, err)
		second, err := svc.FindProductById(c, bowl.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Name, second.Name)

		mr.FastForward(2 * time.Minute)
		third, err := svc.FindProductById(c, bowl.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", third.Name)
	})

	t.Run("given broken cache should read from database", func(t *testing.T) {
		plate := testutil.SeedProduct(t, c, queries, seed.ShopID, "plate", 3, "7.50")
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		t.Cleanup(func() { broken.Close() })

		product, err := NewProductService(pool, cache.NewProductCache(broken, time.Minute)).FindProductById(c, plate.ID)

		require.NoError(t, err)
		assert.Equal(t, "plate", product.Name)
	})

	t.Run("given unknown product should be not found", func(t *testing.T) {
		_, err := svc.FindProductById(c, uuid.New())

		assert.ErrorIs(t, err, productErrors.ErrProductNotFound)
	})

	t.Run("given partial update should keep other fields and evict cache", func(t *testing.T) {
		cup := testutil.SeedProduct(t, c, queries, seed.ShopID, "cup", 3, "2.00")
		_, err := svc.FindProductById(c, cup.ID)
		require.NoError(t, err)

		quantity := int32(9)
		updated, err := svc.UpdateProduct(c, seed.ShopID, cup.ID, request.UpdateProduct{Quantity: &quantity})

		require.NoError(t, err)
		assert.Equal(t, "cup", updated.Name)
		assert.Equal(t, int32(9), updated.Quantity)
		assert.True(t, decimal.RequireFromString("2.00").Equal(updated.Price))
		assert.False(t, mr.Exists(cache.Key(cup.ID)))
	})

	t.Run("given update from another shop should be not found", func(t *testing.T) {
		saucer := testutil.SeedProduct(t, c, queries, seed.ShopID, "saucer", 3, "2.00")
		name := "stolen"

		_, err := svc.UpdateProduct(c, uuid.New(), saucer.ID, request.UpdateProduct{Name: &name})

		assert.ErrorIs(t, err, productErrors.ErrProductNotFound)
	})

	t.Run("given delete should remove product", func(t *testing.T) {
		jug := testutil.SeedProduct(t, c, queries, seed.ShopID, "jug", 3, "9.00")

		require.NoError(t, svc.DeleteProduct(c, seed.ShopID, jug.ID))

		_, err := svc.FindProductById(c, jug.ID)
		assert.ErrorIs(t, err, productErrors.ErrProductNotFound)
		assert.ErrorIs(t, svc.DeleteProduct(c, seed.ShopID, jug.ID), productErrors.ErrProductNotFound)
	})

	t.Run("given search should match case insensitively and treat All as no filter", func(t *testing.T) {
		_, err := svc.InsertProduct(c, seed.ShopID, request.InsertProduct{
			Name:     "Desk Lamp",
			Category: "lighting",
			Price:    decimal.RequireFromString("30.00"),
		})
		require.NoError(t, err)

		products, err := svc.SearchProducts(c, request.SearchProduct{Search: "desk", Category: request.CategoryAll})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Desk Lamp", products[0].Name)

		products, err = svc.SearchProducts(c, request.SearchProduct{Search: "desk", Category: "kitchen"})
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("given related products should exclude itself", func(t *testing.T) {
		kettle := testutil.SeedProduct(t, c, queries, seed.ShopID, "kettle", 1, "15.00")

		related, err := svc.FindRelatedProducts(c, kettle.ID)

		require.NoError(t, err)
		assert.LessOrEqual(t, len(related), RelatedLimit)
		for _, product := range related {
			assert.NotEqual(t, kettle.ID, product.ID)
			assert.Equal(t, "kitchen", product.Category)
		}
	})

	t.Run("given listings should be bounded and distinct", func(t *testing.T) {
		latest, err := svc.FindLatestProducts(c)
		require.NoError(t, err)
		assert.Len(t, latest, LatestLimit)

		categories, err := svc.FindCategories(c)
		require.NoError(t, err)
		assert.Equal(t, []string{"kitchen", "lighting"}, categories)

		byShop, err := svc.FindProductsByShopId(c, seed.ShopID)
		require.NoError(t, err)
		assert.Greater(t, len(byShop), LatestLimit)
	})
}
