package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
	"github.com/Alturino/storefront/order/pkg/status"
)

func writeEnvelope(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	body := map[string]interface{}{"status": "success", "statusCode": statusCode, "message": message}
	if statusCode >= http.StatusBadRequest {
		body["status"] = "failed"
	}
	if data != nil {
		body["data"] = data
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestCreate(t *testing.T) {
	userID := uuid.New()
	shopID := uuid.New()
	productID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/"+userID.String(), r.URL.Path)
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))

		param := request.CreateOrder{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&param))
		assert.Equal(t, "tok_visa", param.Token)
		require.Len(t, param.Order.Lines, 1)

		writeEnvelope(w, http.StatusCreated, "order created", map[string]interface{}{
			"order": response.Order{
				ID:     uuid.New(),
				UserID: userID,
				ShopID: param.Order.ShopID,
				Amount: decimal.RequireFromString("12.50"),
				Status: status.NotProcessed,
			},
		})
	}))
	defer server.Close()

	order, err := New(server.URL, nil).Create(
		context.Background(),
		userID,
		Credentials{Token: "jwt"},
		request.Order{
			ShopID:       shopID,
			CustomerName: "buyer",
			Email:        "buyer@mail.com",
			Lines:        []request.OrderLine{{ProductID: productID, Quantity: 1}},
		},
		"tok_visa",
	)

	require.NoError(t, err)
	assert.Equal(t, shopID, order.ShopID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(order.Amount))
}

func TestListByShop(t *testing.T) {
	shopID := uuid.New()

	t.Run("given shop without orders should return empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, "found orders", map[string]interface{}{"orders": []response.Order{}})
		}))
		defer server.Close()

		orders, err := New(server.URL, nil).ListByShop(context.Background(), shopID, Credentials{Token: "jwt"})

		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	t.Run("given cancelled context should return context canceled and no data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()
		c, cancel := context.WithCancel(context.Background())
		cancel()

		orders, err := New(server.URL, nil).ListByShop(c, shopID, Credentials{Token: "jwt"})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, orders)
	})

	t.Run("given forbidden should return api error with message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusForbidden, "user is not the owner of this shop", nil)
		}))
		defer server.Close()

		orders, err := New(server.URL, nil).ListByShop(context.Background(), shopID, Credentials{Token: "jwt"})

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "user is not the owner of this shop", apiErr.Message)
		assert.Nil(t, orders)
	})

	t.Run("given unreachable server should return transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := New(url, nil).ListByShop(context.Background(), shopID, Credentials{Token: "jwt"})

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.MethodGet, transportErr.Method)
	})
}

func TestStatusValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "found status values", map[string]interface{}{"status_values": status.Values()})
	}))
	defer server.Close()

	values, err := New(server.URL, nil).StatusValues(context.Background())

	require.NoError(t, err)
	assert.Equal(t, status.Values(), values)
}

func TestUpdateAndCancel(t *testing.T) {
	shopID := uuid.New()
	orderID := uuid.New()
	productID := uuid.New()
	lineID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		switch r.URL.Path {
		case "/api/order/status/" + shopID.String():
			param := request.UpdateStatus{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&param))
			writeEnvelope(w, http.StatusOK, "status updated", map[string]interface{}{
				"order": response.Order{ID: param.OrderID, Status: param.Status},
			})
		case "/api/order/" + shopID.String() + "/cancel/" + productID.String():
			writeEnvelope(w, http.StatusOK, "product cancelled", map[string]interface{}{
				"order": response.Order{ID: orderID, Lines: []response.Line{{ID: lineID, Status: status.Cancelled}}},
			})
		case "/api/order/" + orderID.String() + "/charge/" + uuid.Nil.String() + "/" + shopID.String():
			writeEnvelope(w, http.StatusNotFound, "order resource not found", nil)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()
	cl := New(server.URL, nil)
	c := context.Background()

	updated, err := cl.Update(c, shopID, Credentials{Token: "jwt"}, request.UpdateStatus{OrderID: orderID, Status: status.Shipped})
	require.NoError(t, err)
	assert.Equal(t, status.Shipped, updated.Status)

	cancelled, err := cl.CancelProduct(c, shopID, productID, Credentials{Token: "jwt"}, request.CancelProduct{
		OrderID:  orderID,
		LineID:   lineID,
		Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, status.Cancelled, cancelled.Lines[0].Status)

	_, err = cl.ProcessCharge(c, orderID, uuid.Nil, shopID, Credentials{Token: "jwt"}, request.ProcessCharge{ChargeID: "ch"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
