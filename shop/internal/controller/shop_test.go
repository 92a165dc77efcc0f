package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/token"
	shopErrors "github.com/Alturino/storefront/shop/internal/errors"
	"github.com/Alturino/storefront/shop/pkg/request"
	"github.com/Alturino/storefront/shop/pkg/response"
)

const secretKey = "test-secret"

type fakeService struct {
	shops     []response.Shop
	insertErr error
}

func (f *fakeService) InsertShop(c context.Context, ownerID uuid.UUID, param request.InsertShop) (response.Shop, error) {
	if f.insertErr != nil {
		return response.Shop{}, f.insertErr
	}
	shop := response.Shop{ID: uuid.New(), OwnerID: ownerID, Name: param.Name, Description: param.Description}
	f.shops = append(f.shops, shop)
	return shop, nil
}

func (f *fakeService) FindShops(c context.Context) ([]response.Shop, error) {
	return f.shops, nil
}

func (f *fakeService) FindShopsByOwnerId(c context.Context, ownerID uuid.UUID) ([]response.Shop, error) {
	shops := []response.Shop{}
	for _, shop := range f.shops {
		if shop.OwnerID == ownerID {
			shops = append(shops, shop)
		}
	}
	return shops, nil
}

func (f *fakeService) FindShopById(c context.Context, id uuid.UUID) (response.Shop, error) {
	for _, shop := range f.shops {
		if shop.ID == id {
			return shop, nil
		}
	}
	return response.Shop{}, shopErrors.ErrShopNotFound
}

func serve(t *testing.T, router *mux.Router, method string, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload := &bytes.Buffer{}
	if body != nil {
		require.NoError(t, json.NewEncoder(payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, payload)
	if userID != uuid.Nil {
		signed, err := token.Sign(secretKey, userID, time.Now())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestShopController(t *testing.T) {
	owner := uuid.New()
	service := &fakeService{}
	router := mux.NewRouter()
	AttachShopController(router, service, secretKey)

	tests := []struct {
		name         string
		userID       uuid.UUID
		body         interface{}
		expectedCode int
	}{
		{
			name:         "given owner token should create shop",
			userID:       owner,
			body:         request.InsertShop{Name: "kiln"},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "given empty name should be bad request",
			userID:       owner,
			body:         request.InsertShop{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "given token of another user should be forbidden",
			userID:       uuid.New(),
			body:         request.InsertShop{Name: "kiln"},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "given no token should be unauthorized",
			body:         request.InsertShop{Name: "kiln"},
			expectedCode: http.StatusUnauthorized,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := serve(t, router, http.MethodPost, "/api/shops/by/"+owner.String(), test.userID, test.body)

			assert.Equal(t, test.expectedCode, rec.Code)
		})
	}

	require.Len(t, service.shops, 1)
	created := service.shops[0]

	rec := serve(t, router, http.MethodGet, "/api/shop/"+created.ID.String(), uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/shop/"+uuid.NewString(), uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/shops", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/shops/by/"+owner.String(), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := struct {
		Data struct {
			Shops []response.Shop `json:"shops"`
		} `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data.Shops, 1)
}

func TestInsertShopRequiresSeller(t *testing.T) {
	buyer := uuid.New()
	service := &fakeService{insertErr: fmt.Errorf("failed inserting shop with error=%w", shopErrors.ErrNotSeller)}
	router := mux.NewRouter()
	AttachShopController(router, service, secretKey)

	rec := serve(t, router, http.MethodPost, "/api/shops/by/"+buyer.String(), buyer, request.InsertShop{Name: "stall"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, service.shops)
}
