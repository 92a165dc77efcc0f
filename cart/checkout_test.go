package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/order/pkg/client"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

type fakeCreator struct {
	orders []request.Order
	fail   map[uuid.UUID]error
}

func (f *fakeCreator) Create(
	c context.Context,
	userID uuid.UUID,
	credentials client.Credentials,
	order request.Order,
	paymentToken string,
) (response.Order, error) {
	f.orders = append(f.orders, order)
	if err := f.fail[order.ShopID]; err != nil {
		return response.Order{}, err
	}
	return response.Order{ID: uuid.New(), UserID: userID, ShopID: order.ShopID}, nil
}

func TestCheckout(t *testing.T) {
	c := context.Background()
	params := CheckoutParams{
		UserID:       uuid.New(),
		Credentials:  client.Credentials{Token: "token"},
		CustomerName: "Ada",
		Email:        "ada@example.com",
		PaymentToken: "tok_visa",
	}

	t.Run("given empty cart should fail", func(t *testing.T) {
		orders, err := Checkout(c, NewStore(NewMemoryStorage()), &fakeCreator{}, params)

		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Empty(t, orders)
	})

	t.Run("given lines of two shops should place one order per shop and clear cart", func(t *testing.T) {
		storage := NewMemoryStorage()
		store := NewStore(storage)
		shopA, shopB := uuid.New(), uuid.New()
		mug := newProduct("mug", "5.00", shopA)
		require.NoError(t, store.AddItem(c, mug))
		require.NoError(t, store.AddItem(c, newProduct("lamp", "20.00", shopB)))
		require.NoError(t, store.AddItem(c, newProduct("plate", "7.50", shopA)))
		require.NoError(t, store.UpdateQuantity(c, 0, 3))
		creator := &fakeCreator{}

		orders, err := Checkout(c, store, creator, params)

		require.NoError(t, err)
		require.Len(t, orders, 2)
		require.Len(t, creator.orders, 2)
		assert.Equal(t, shopA, creator.orders[0].ShopID)
		assert.Equal(t, shopB, creator.orders[1].ShopID)
		require.Len(t, creator.orders[0].Lines, 2)
		assert.Equal(t, request.OrderLine{ProductID: mug.ID, Quantity: 3}, creator.orders[0].Lines[0])
		assert.Equal(t, "ada@example.com", creator.orders[1].Email)
		_, ok, _ := storage.Get(c, StorageKey)
		assert.False(t, ok)
	})

	t.Run("given failing shop should keep only its lines", func(t *testing.T) {
		store := NewStore(NewMemoryStorage())
		shopA, shopB := uuid.New(), uuid.New()
		lamp := newProduct("lamp", "20.00", shopB)
		require.NoError(t, store.AddItem(c, newProduct("mug", "5.00", shopA)))
		require.NoError(t, store.AddItem(c, lamp))
		failure := errors.New("out of stock")
		creator := &fakeCreator{fail: map[uuid.UUID]error{shopB: failure}}

		orders, err := Checkout(c, store, creator, params)

		assert.ErrorIs(t, err, failure)
		require.Len(t, orders, 1)
		assert.Equal(t, shopA, orders[0].ShopID)
		lines := store.GetCart(c)
		require.Len(t, lines, 1)
		assert.Equal(t, lamp.ID, lines[0].Product.ID)
	})
	t.Run("given every shop failing should leave cart untouched", func(t *testing.T) {
		storage := NewMemoryStorage()
		store := NewStore(storage)
		shopX, shopY := uuid.New(), uuid.New()
		require.NoError(t, store.AddItem(c, newProduct("a1", "1.00", shopX)))
		require.NoError(t, store.AddItem(c, newProduct("b1", "2.00", shopY)))
		require.NoError(t, store.AddItem(c, newProduct("a2", "3.00", shopX)))
		before, _, err := storage.Get(c, StorageKey)
		require.NoError(t, err)
		failure := errors.New("unavailable")
		creator := &fakeCreator{fail: map[uuid.UUID]error{shopX: failure, shopY: failure}}

		orders, err := Checkout(c, store, creator, params)

		assert.ErrorIs(t, err, failure)
		assert.Empty(t, orders)
		after, _, err := storage.Get(c, StorageKey)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		names := []string{}
		for _, line := range store.GetCart(c) {
			names = append(names, line.Product.Name)
		}
		assert.Equal(t, []string{"a1", "b1", "a2"}, names)
	})

	t.Run("given interleaved shops should keep failed lines in cart order", func(t *testing.T) {
		store := NewStore(NewMemoryStorage())
		shopX, shopY, shopZ := uuid.New(), uuid.New(), uuid.New()
		require.NoError(t, store.AddItem(c, newProduct("a1", "1.00", shopX)))
		require.NoError(t, store.AddItem(c, newProduct("b1", "2.00", shopY)))
		require.NoError(t, store.AddItem(c, newProduct("c1", "3.00", shopZ)))
		require.NoError(t, store.AddItem(c, newProduct("a2", "4.00", shopX)))
		failure := errors.New("unavailable")
		creator := &fakeCreator{fail: map[uuid.UUID]error{shopX: failure, shopZ: failure}}

		orders, err := Checkout(c, store, creator, params)

		assert.ErrorIs(t, err, failure)
		require.Len(t, orders, 1)
		assert.Equal(t, shopY, orders[0].ShopID)
		names := []string{}
		for _, line := range store.GetCart(c) {
			names = append(names, line.Product.Name)
		}
		assert.Equal(t, []string{"a1", "c1", "a2"}, names)
	})
}
