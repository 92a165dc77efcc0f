// Package cache keeps product reads in redis. Every failure here is reported to the
// caller, which treats the cache as optional.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alturino/storefront/product/pkg/response"
)

const (
	KEY_PRODUCT = "product:"
	DefaultTTL  = time.Minute
)

var ErrMiss = errors.New("product cache miss")

func Key(id uuid.UUID) string {
	return KEY_PRODUCT + id.String()
}

type ProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewProductCache(client redis.Cmdable, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

func (p *ProductCache) Get(c context.Context, id uuid.UUID) (response.Product, error) {
	payload, err := p.client.Get(c, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return response.Product{}, ErrMiss
	}
	if err != nil {
		return response.Product{}, fmt.Errorf("failed getting key=%s with error=%w", Key(id), err)
	}
	product := response.Product{}
	if err = json.Unmarshal(payload, &product); err != nil {
		return response.Product{}, fmt.Errorf("failed decoding key=%s with error=%w", Key(id), err)
	}
	return product, nil
}

func (p *ProductCache) Set(c context.Context, product response.Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed encoding product with error=%w", err)
	}
	if err = p.client.Set(c, Key(product.ID), payload, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed setting key=%s with error=%w", Key(product.ID), err)
	}
	return nil
}

func (p *ProductCache) Delete(c context.Context, id uuid.UUID) error {
	if err := p.client.Del(c, Key(id)).Err(); err != nil {
		return fmt.Errorf("failed deleting key=%s with error=%w", Key(id), err)
	}
	return nil
}
