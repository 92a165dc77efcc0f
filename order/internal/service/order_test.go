package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/inventory"
	orderErrors "github.com/Alturino/storefront/order/internal/errors"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
	"github.com/Alturino/storefront/order/pkg/status"
)

type fixture struct {
	shopID  uuid.UUID
	userID  uuid.UUID
	mug     repository.Product
	plate   repository.Product
	store   *fakeStore
	stock   *fakeStock
	redis   *redis.Client
	service *OrderService
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	shopID := uuid.New()
	mug := repository.Product{
		ID:       uuid.New(),
		ShopID:   shopID,
		ShopName: "kitchen shop",
		Name:     "mug",
		Price:    repository.NumericFromDecimal(decimal.RequireFromString("10.00")),
		Quantity: 5,
	}
	plate := repository.Product{
		ID:       uuid.New(),
		ShopID:   shopID,
		ShopName: "kitchen shop",
		Name:     "plate",
		Price:    repository.NumericFromDecimal(decimal.RequireFromString("2.50")),
		Quantity: 8,
	}
	store := newFakeStore(mug, plate)
	stock := newFakeStock(map[uuid.UUID]int32{mug.ID: 5, plate.ID: 8})

	return fixture{
		shopID:  shopID,
		userID:  uuid.New(),
		mug:     mug,
		plate:   plate,
		store:   store,
		stock:   stock,
		redis:   client,
		service: NewOrderService(store, stock, client),
	}
}

func (f fixture) createOrder(lines ...request.OrderLine) request.CreateOrder {
	return request.CreateOrder{
		Order: request.Order{
			ShopID:          f.shopID,
			CustomerName:    "buyer",
			Email:           "buyer@mail.com",
			DeliveryAddress: request.Address{Street: "Jl. Merdeka 1", City: "Bandung", Country: "ID"},
			Lines:           lines,
		},
		Token: "tok_visa",
	}
}

func TestCreateOrder(t *testing.T) {
	c := context.Background()

	t.Run("given available products should decrease stock persist order and publish event", func(t *testing.T) {
		f := newFixture(t)
		sub := f.redis.Subscribe(c, constants.CHANNEL_ORDER_EVENTS)
		defer sub.Close()
		_, err := sub.Receive(c)
		require.NoError(t, err)

		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(
			request.OrderLine{ProductID: f.mug.ID, Quantity: 2},
			request.OrderLine{ProductID: f.plate.ID, Quantity: 4},
		))

		require.NoError(t, err)
		assert.Equal(t, f.userID, order.UserID)
		assert.Equal(t, f.shopID, order.ShopID)
		assert.Equal(t, status.NotProcessed, order.Status)
		assert.True(t, decimal.RequireFromString("30").Equal(order.Amount), "amount=%s", order.Amount)
		assert.Equal(t, "Bandung", order.DeliveryAddress.City)
		require.Len(t, order.Lines, 2)
		assert.Equal(t, "mug", order.Lines[0].ProductName)
		assert.Equal(t, status.NotProcessed, order.Lines[0].Status)
		assert.Equal(t, int32(3), f.stock.quantity(f.mug.ID))
		assert.Equal(t, int32(4), f.stock.quantity(f.plate.ID))

		msg, err := sub.ReceiveMessage(c)
		require.NoError(t, err)
		event := response.Event{}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, EventOrderCreated, event.Type)
		assert.Equal(t, order.ID, event.Order.ID)
	})

	t.Run("given failed decrease should not write order", func(t *testing.T) {
		f := newFixture(t)
		f.stock.decreaseErr = inventory.ErrOutOfStock

		_, err := f.service.CreateOrder(c, f.userID, f.createOrder(
			request.OrderLine{ProductID: f.mug.ID, Quantity: 1},
		))

		assert.ErrorIs(t, err, inventory.ErrOutOfStock)
		assert.Empty(t, f.store.orders)
		assert.Equal(t, int32(5), f.stock.quantity(f.mug.ID))
	})

	t.Run("given failed insert should restock every line", func(t *testing.T) {
		f := newFixture(t)
		f.store.insertOrderErr = assert.AnError

		_, err := f.service.CreateOrder(c, f.userID, f.createOrder(
			request.OrderLine{ProductID: f.mug.ID, Quantity: 2},
			request.OrderLine{ProductID: f.plate.ID, Quantity: 1},
		))

		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, f.store.orders)
		assert.Equal(t, int32(5), f.stock.quantity(f.mug.ID))
		assert.Equal(t, int32(8), f.stock.quantity(f.plate.ID))
		require.Len(t, f.stock.calls, 2)
		assert.Equal(t, "decrease", f.stock.calls[0].direction)
		assert.Equal(t, "increase", f.stock.calls[1].direction)
		assert.Equal(t, f.stock.calls[0].lines, f.stock.calls[1].lines)
	})

	t.Run("given concurrent orders beyond stock should both succeed and go negative", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 3}))
		require.NoError(t, err)
		second, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 3}))
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, int32(-1), f.stock.quantity(f.mug.ID))
	})

	t.Run("given unknown product should fail before stock changes", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: uuid.New(), Quantity: 1}))

		assert.ErrorIs(t, err, inventory.ErrProductNotFound)
		assert.Empty(t, f.stock.calls)
	})

	t.Run("given product of another shop should fail", func(t *testing.T) {
		f := newFixture(t)
		other := f.mug
		other.ID = uuid.New()
		other.ShopID = uuid.New()
		f.store.products[other.ID] = other

		_, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: other.ID, Quantity: 1}))

		assert.ErrorIs(t, err, orderErrors.ErrProductNotInShop)
		assert.Empty(t, f.stock.calls)
	})

	t.Run("given empty lines or zero quantity should fail", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateOrder(c, f.userID, f.createOrder())
		assert.ErrorIs(t, err, orderErrors.ErrInvalidOrder)

		_, err = f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 0}))
		assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
		assert.Empty(t, f.stock.calls)
	})
}

func TestFindOrdersByShopId(t *testing.T) {
	c := context.Background()
	f := newFixture(t)

	orders, err := f.service.FindOrdersByShopId(c, f.shopID)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	first, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 1}))
	require.NoError(t, err)
	second, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.plate.ID, Quantity: 1}))
	require.NoError(t, err)

	orders, err = f.service.FindOrdersByShopId(c, f.shopID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	require.Len(t, orders[1].Lines, 1)

	orders, err = f.service.FindOrdersByShopId(c, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCancelProduct(t *testing.T) {
	c := context.Background()

	t.Run("given line should restock and mark it cancelled", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 2}))
		require.NoError(t, err)
		line := order.Lines[0]

		cancelled, err := f.service.CancelProduct(c, f.shopID, f.mug.ID, request.CancelProduct{
			OrderID:  order.ID,
			LineID:   line.ID,
			Quantity: line.Quantity,
		})

		require.NoError(t, err)
		assert.Equal(t, status.Cancelled, cancelled.Lines[0].Status)
		assert.Equal(t, int32(5), f.stock.quantity(f.mug.ID))
	})

	t.Run("given cancel twice should restock twice", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 2}))
		require.NoError(t, err)
		param := request.CancelProduct{OrderID: order.ID, LineID: order.Lines[0].ID, Quantity: 2}

		_, err = f.service.CancelProduct(c, f.shopID, f.mug.ID, param)
		require.NoError(t, err)
		_, err = f.service.CancelProduct(c, f.shopID, f.mug.ID, param)
		require.NoError(t, err)

		assert.Equal(t, int32(7), f.stock.quantity(f.mug.ID))
	})

	t.Run("given failed restock should leave line status unchanged", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 2}))
		require.NoError(t, err)
		f.stock.increaseErr = assert.AnError

		_, err = f.service.CancelProduct(c, f.shopID, f.mug.ID, request.CancelProduct{
			OrderID:  order.ID,
			LineID:   order.Lines[0].ID,
			Quantity: 2,
		})

		assert.ErrorIs(t, err, assert.AnError)
		_, lines, err := f.store.FindOrderById(c, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status.NotProcessed, lines[0].Status)
	})

	t.Run("given quantity other than the line's should reject without restocking", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 1}))
		require.NoError(t, err)

		_, err = f.service.CancelProduct(c, f.shopID, f.mug.ID, request.CancelProduct{
			OrderID:  order.ID,
			LineID:   order.Lines[0].ID,
			Quantity: 1000,
		})

		assert.ErrorIs(t, err, orderErrors.ErrQuantityMismatch)
		assert.Equal(t, int32(4), f.stock.quantity(f.mug.ID))
		_, lines, err := f.store.FindOrderById(c, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status.NotProcessed, lines[0].Status)
	})

	t.Run("given order of another shop should be not found", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 2}))
		require.NoError(t, err)

		_, err = f.service.CancelProduct(c, uuid.New(), f.mug.ID, request.CancelProduct{
			OrderID:  order.ID,
			LineID:   order.Lines[0].ID,
			Quantity: 2,
		})

		assert.ErrorIs(t, err, orderErrors.ErrOrderNotFound)
		assert.Equal(t, int32(3), f.stock.quantity(f.mug.ID))
	})

	t.Run("given product not on the line should be not found", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 2}))
		require.NoError(t, err)

		_, err = f.service.CancelProduct(c, f.shopID, f.plate.ID, request.CancelProduct{
			OrderID:  order.ID,
			LineID:   order.Lines[0].ID,
			Quantity: 2,
		})

		assert.ErrorIs(t, err, orderErrors.ErrLineNotFound)
	})
}

func TestProcessCharge(t *testing.T) {
	c := context.Background()

	t.Run("given succeeded charge without line should move order to processing", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 1}))
		require.NoError(t, err)

		charged, err := f.service.ProcessCharge(c, order.ID, f.userID, f.shopID, request.ProcessCharge{
			ChargeID: "ch_1",
			Amount:   order.Amount,
			Status:   status.ChargeSucceeded,
		})

		require.NoError(t, err)
		assert.Equal(t, status.Processing, charged.Status)
		assert.Equal(t, status.NotProcessed, charged.Lines[0].Status)
		require.Len(t, f.store.charges, 1)
		assert.Equal(t, "ch_1", f.store.charges[0].ChargeID)
	})

	t.Run("given succeeded charge for line should move only that line", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(
			request.OrderLine{ProductID: f.mug.ID, Quantity: 1},
			request.OrderLine{ProductID: f.plate.ID, Quantity: 1},
		))
		require.NoError(t, err)
		lineID := order.Lines[1].ID

		charged, err := f.service.ProcessCharge(c, order.ID, f.userID, f.shopID, request.ProcessCharge{
			LineID:   &lineID,
			ChargeID: "ch_2",
			Amount:   decimal.RequireFromString("2.50"),
			Status:   status.ChargeSucceeded,
		})

		require.NoError(t, err)
		assert.Equal(t, status.NotProcessed, charged.Status)
		assert.Equal(t, status.NotProcessed, charged.Lines[0].Status)
		assert.Equal(t, status.Processing, charged.Lines[1].Status)
	})

	t.Run("given failed charge should only record it", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 1}))
		require.NoError(t, err)

		charged, err := f.service.ProcessCharge(c, order.ID, f.userID, f.shopID, request.ProcessCharge{
			ChargeID: "ch_3",
			Amount:   order.Amount,
			Status:   "failed",
		})

		require.NoError(t, err)
		assert.Equal(t, status.NotProcessed, charged.Status)
		assert.Len(t, f.store.charges, 1)
	})

	t.Run("given another customer should be not found", func(t *testing.T) {
		f := newFixture(t)
		order, err := f.service.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 1}))
		require.NoError(t, err)

		_, err = f.service.ProcessCharge(c, order.ID, uuid.New(), f.shopID, request.ProcessCharge{
			ChargeID: "ch_4",
			Status:   status.ChargeSucceeded,
		})

		assert.ErrorIs(t, err, orderErrors.ErrOrderNotFound)
		assert.Empty(t, f.store.charges)
	})
}

func TestUpdateStatus(t *testing.T) {
	c := context.Background()

	f := newFixture(t)
	order, err := f.service.CreateOrder(c, f.userID, f.createOrder(
		request.OrderLine{ProductID: f.mug.ID, Quantity: 1},
		request.OrderLine{ProductID: f.plate.ID, Quantity: 1},
	))
	require.NoError(t, err)
	lineID := order.Lines[0].ID
	unknownLineID := uuid.New()

	tests := []struct {
		name        string
		shopID      uuid.UUID
		param       request.UpdateStatus
		expected    func(t *testing.T, order response.Order)
		expectedErr error
	}{
		{
			name:   "given order status should update order",
			shopID: f.shopID,
			param:  request.UpdateStatus{OrderID: order.ID, Status: status.Shipped},
			expected: func(t *testing.T, actual response.Order) {
				assert.Equal(t, status.Shipped, actual.Status)
			},
		},
		{
			name:   "given line status should update only the line",
			shopID: f.shopID,
			param:  request.UpdateStatus{OrderID: order.ID, LineID: &lineID, Status: status.Delivered},
			expected: func(t *testing.T, actual response.Order) {
				assert.Equal(t, status.Delivered, actual.Lines[0].Status)
				assert.Equal(t, status.NotProcessed, actual.Lines[1].Status)
			},
		},
		{
			name:   "given cancelled status should be accepted without restock",
			shopID: f.shopID,
			param:  request.UpdateStatus{OrderID: order.ID, Status: status.Cancelled},
			expected: func(t *testing.T, actual response.Order) {
				assert.Equal(t, status.Cancelled, actual.Status)
				assert.Equal(t, int32(4), f.stock.quantity(f.mug.ID))
			},
		},
		{
			name:        "given unknown status should fail",
			shopID:      f.shopID,
			param:       request.UpdateStatus{OrderID: order.ID, Status: "Lost"},
			expectedErr: orderErrors.ErrInvalidStatus,
		},
		{
			name:        "given other shop should be not found",
			shopID:      uuid.New(),
			param:       request.UpdateStatus{OrderID: order.ID, Status: status.Shipped},
			expectedErr: orderErrors.ErrOrderNotFound,
		},
		{
			name:        "given unknown line should be not found",
			shopID:      f.shopID,
			param:       request.UpdateStatus{OrderID: order.ID, LineID: &unknownLineID, Status: status.Shipped},
			expectedErr: orderErrors.ErrLineNotFound,
		},
		{
			name:        "given unknown order should be not found",
			shopID:      f.shopID,
			param:       request.UpdateStatus{OrderID: uuid.New(), Status: status.Shipped},
			expectedErr: orderErrors.ErrOrderNotFound,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := f.service.UpdateStatus(c, test.shopID, test.param)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				return
			}
			require.NoError(t, err)
			test.expected(t, actual)
		})
	}
}

func TestPublishFailureIsNotReturned(t *testing.T) {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := newFixture(t)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	svc := NewOrderService(f.store, f.stock, client)

	order, err := svc.CreateOrder(c, f.userID, f.createOrder(request.OrderLine{ProductID: f.mug.ID, Quantity: 1}))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
}

func TestStatusValues(t *testing.T) {
	assert.Equal(t, status.Values(), NewOrderService(nil, nil, nil).StatusValues())
}
