// Package client is the typed caller of the order api used by the storefront front end and CLI.
package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

type (
	TransportError = inHttp.TransportError
	APIError       = inHttp.APIError
)

// Credentials is the bearer token of the signed in user.
type Credentials struct {
	Token string
}

type Client struct {
	http *inHttp.Client
}

// New builds a client for baseURL; a nil httpClient uses an otelhttp instrumented default.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{http: inHttp.NewClient(baseURL, httpClient)}
}

type orderData struct {
	Order response.Order `json:"order"`
}

func (cl *Client) Create(
	c context.Context,
	userID uuid.UUID,
	credentials Credentials,
	order request.Order,
	paymentToken string,
) (response.Order, error) {
	data := orderData{}
	err := cl.http.Do(
		c,
		http.MethodPost,
		"/api/orders/"+userID.String(),
		credentials.Token,
		request.CreateOrder{Order: order, Token: paymentToken},
		&data,
	)
	if err != nil {
		return response.Order{}, err
	}
	return data.Order, nil
}

// ListByShop returns the shop's orders newest first. A shop without orders is an empty
// slice, never nil; a cancelled c returns its error and no data.
func (cl *Client) ListByShop(
	c context.Context,
	shopID uuid.UUID,
	credentials Credentials,
) ([]response.Order, error) {
	data := struct {
		Orders []response.Order `json:"orders"`
	}{}
	err := cl.http.Do(c, http.MethodGet, "/api/orders/shop/"+shopID.String(), credentials.Token, nil, &data)
	if err != nil {
		return nil, err
	}
	if data.Orders == nil {
		return []response.Order{}, nil
	}
	return data.Orders, nil
}

func (cl *Client) StatusValues(c context.Context) ([]string, error) {
	data := struct {
		StatusValues []string `json:"status_values"`
	}{}
	err := cl.http.Do(c, http.MethodGet, "/api/order/status_values", "", nil, &data)
	if err != nil {
		return nil, err
	}
	return data.StatusValues, nil
}

func (cl *Client) CancelProduct(
	c context.Context,
	shopID uuid.UUID,
	productID uuid.UUID,
	credentials Credentials,
	detail request.CancelProduct,
) (response.Order, error) {
	data := orderData{}
	err := cl.http.Do(
		c,
		http.MethodPut,
		"/api/order/"+shopID.String()+"/cancel/"+productID.String(),
		credentials.Token,
		detail,
		&data,
	)
	if err != nil {
		return response.Order{}, err
	}
	return data.Order, nil
}

func (cl *Client) ProcessCharge(
	c context.Context,
	orderID uuid.UUID,
	userID uuid.UUID,
	shopID uuid.UUID,
	credentials Credentials,
	detail request.ProcessCharge,
) (response.Order, error) {
	data := orderData{}
	err := cl.http.Do(
		c,
		http.MethodPut,
		"/api/order/"+orderID.String()+"/charge/"+userID.String()+"/"+shopID.String(),
		credentials.Token,
		detail,
		&data,
	)
	if err != nil {
		return response.Order{}, err
	}
	return data.Order, nil
}

func (cl *Client) Update(
	c context.Context,
	shopID uuid.UUID,
	credentials Credentials,
	statusUpdate request.UpdateStatus,
) (response.Order, error) {
	data := orderData{}
	err := cl.http.Do(
		c,
		http.MethodPut,
		"/api/order/status/"+shopID.String(),
		credentials.Token,
		statusUpdate,
		&data,
	)
	if err != nil {
		return response.Order{}, err
	}
	return data.Order, nil
}
