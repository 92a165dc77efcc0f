// Package client reads the public product catalog of the storefront api.
package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

type Client struct {
	http *inHttp.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{http: inHttp.NewClient(baseURL, httpClient)}
}

func (cl *Client) FindProductById(c context.Context, id uuid.UUID) (response.Product, error) {
	data := struct {
		Product response.Product `json:"product"`
	}{}
	if err := cl.http.Do(c, http.MethodGet, "/api/product/"+id.String(), "", nil, &data); err != nil {
		return response.Product{}, err
	}
	return data.Product, nil
}

func (cl *Client) list(c context.Context, path string) ([]response.Product, error) {
	data := struct {
		Products []response.Product `json:"products"`
	}{}
	if err := cl.http.Do(c, http.MethodGet, path, "", nil, &data); err != nil {
		return nil, err
	}
	if data.Products == nil {
		return []response.Product{}, nil
	}
	return data.Products, nil
}

func (cl *Client) Search(c context.Context, param request.SearchProduct) ([]response.Product, error) {
	query := url.Values{}
	if param.Search != "" {
		query.Set("search", param.Search)
	}
	if param.Category != "" {
		query.Set("category", param.Category)
	}
	path := "/api/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return cl.list(c, path)
}

func (cl *Client) Latest(c context.Context) ([]response.Product, error) {
	return cl.list(c, "/api/products/latest")
}
