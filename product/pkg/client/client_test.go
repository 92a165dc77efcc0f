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

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
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

func TestFindProductById(t *testing.T) {
	known := response.Product{
		ID:    uuid.New(),
		Name:  "mug",
		Price: decimal.RequireFromString("5.00"),
		Shop:  response.Shop{ID: uuid.New(), Name: "kiln"},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/product/"+known.ID.String() {
			writeEnvelope(w, http.StatusNotFound, "product not found", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "product found", map[string]interface{}{"product": known})
	}))
	defer server.Close()
	cl := New(server.URL, server.Client())

	product, err := cl.FindProductById(context.Background(), known.ID)
	require.NoError(t, err)
	assert.Equal(t, known.Name, product.Name)
	assert.Equal(t, known.Shop, product.Shop)
	assert.True(t, known.Price.Equal(product.Price))

	_, err = cl.FindProductById(context.Background(), uuid.New())
	apiErr := &inHttp.APIError{}
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "product not found", apiErr.Message)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "lamp", r.URL.Query().Get("search"))
		assert.Equal(t, "All", r.URL.Query().Get("category"))
		writeEnvelope(w, http.StatusOK, "products found", map[string]interface{}{"products": nil})
	}))
	defer server.Close()

	products, err := New(server.URL, server.Client()).
		Search(context.Background(), request.SearchProduct{Search: "lamp", Category: request.CategoryAll})

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}
