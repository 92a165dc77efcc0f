// Package cart keeps the pending purchase of one browsing session behind a Storage.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
)

const StorageKey = "cart"

var (
	ErrOutOfRange      = errors.New("cart index out of range")
	ErrInvalidQuantity = errors.New("cart quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
)

type Shop struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Product is the snapshot taken when it was added, it is not refreshed afterwards.
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Shop  Shop            `json:"shop"`
}

type Line struct {
	Product  Product   `json:"product"`
	Quantity int32     `json:"quantity"`
	Shop     uuid.UUID `json:"shop"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

// Store reads and writes the whole cart under StorageKey. Two stores sharing one
// storage race with last write wins.
type Store struct {
	storage Storage
}

// NewStore with a nil storage gives a store whose reads are empty and whose writes do nothing.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

func (s *Store) load(c context.Context) ([]Line, error) {
	if s.storage == nil {
		return []Line{}, nil
	}
	payload, ok, err := s.storage.Get(c, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed reading cart with error=%w", err)
	}
	if !ok || len(payload) == 0 {
		return []Line{}, nil
	}
	lines := []Line{}
	if err = json.Unmarshal(payload, &lines); err != nil {
		return nil, fmt.Errorf("failed decoding cart with error=%w", err)
	}
	return lines, nil
}

// read degrades every failure to an empty cart; write paths use load and return the error.
func (s *Store) read(c context.Context, process string) []Line {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Store").
		Str(constants.KEY_PROCESS, process).
		Str(constants.KEY_STORAGE_KEY, StorageKey).
		Logger()

	lines, err := s.load(c)
	if err != nil {
		logger.Warn().Err(err).Msg("cart unreadable, using empty cart")
		return []Line{}
	}
	return lines
}

func (s *Store) save(c context.Context, lines []Line) error {
	if s.storage == nil {
		return nil
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed encoding cart with error=%w", err)
	}
	if err = s.storage.Set(c, StorageKey, payload); err != nil {
		return fmt.Errorf("failed writing cart with error=%w", err)
	}
	return nil
}

func (s *Store) ItemCount(c context.Context) int {
	c, span := otel.Tracer.Start(c, "Store ItemCount")
	defer span.End()

	return len(s.read(c, "ItemCount"))
}

func (s *Store) GetCart(c context.Context) []Line {
	c, span := otel.Tracer.Start(c, "Store GetCart")
	defer span.End()

	return s.read(c, "GetCart")
}

// AddItem appends a new line with quantity 1, adding the same product twice gives two lines.
func (s *Store) AddItem(c context.Context, product Product) error {
	c, span := otel.Tracer.Start(c, "Store AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Store").
		Str(constants.KEY_PROCESS, "AddItem").
		Str(constants.KEY_PRODUCT_ID, product.ID.String()).
		Logger()

	logger.Trace().Msg("adding item to cart")
	lines, err := s.load(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	lines = append(lines, Line{Product: product, Quantity: 1, Shop: product.Shop.ID})
	if err = s.save(c, lines); err != nil {
		err = fmt.Errorf("failed adding item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Debug().Int(constants.KEY_CART_LINES, len(lines)).Msg("added item to cart")
	return nil
}

func (s *Store) UpdateQuantity(c context.Context, index int, quantity int32) error {
	c, span := otel.Tracer.Start(c, "Store UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Store").
		Str(constants.KEY_PROCESS, "UpdateQuantity").
		Int(constants.KEY_CART_INDEX, index).
		Int32(constants.KEY_CART_QUANTITY, quantity).
		Logger()

	if quantity < 1 {
		inOtel.RecordError(ErrInvalidQuantity, span)
		logger.Error().Err(ErrInvalidQuantity).Msg(ErrInvalidQuantity.Error())
		return ErrInvalidQuantity
	}
	if s.storage == nil {
		return nil
	}

	lines, err := s.load(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if index < 0 || index >= len(lines) {
		err = fmt.Errorf("index=%d of %d lines: %w", index, len(lines), ErrOutOfRange)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	lines[index].Quantity = quantity
	if err = s.save(c, lines); err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Debug().Msg("updated cart quantity")
	return nil
}

// RemoveItem returns the lines left after removing index.
func (s *Store) RemoveItem(c context.Context, index int) ([]Line, error) {
	c, span := otel.Tracer.Start(c, "Store RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Store").
		Str(constants.KEY_PROCESS, "RemoveItem").
		Int(constants.KEY_CART_INDEX, index).
		Logger()

	if s.storage == nil {
		return []Line{}, nil
	}

	lines, err := s.load(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if index < 0 || index >= len(lines) {
		err = fmt.Errorf("index=%d of %d lines: %w", index, len(lines), ErrOutOfRange)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	remaining := make([]Line, 0, len(lines)-1)
	remaining = append(remaining, lines[:index]...)
	remaining = append(remaining, lines[index+1:]...)
	if err = s.save(c, remaining); err != nil {
		err = fmt.Errorf("failed removing item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int(constants.KEY_CART_LINES, len(remaining)).Msg("removed item from cart")
	return remaining, nil
}

// Clear deletes the storage key instead of writing an empty list.
func (s *Store) Clear(c context.Context) error {
	c, span := otel.Tracer.Start(c, "Store Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Store").
		Str(constants.KEY_PROCESS, "Clear").
		Logger()

	if s.storage == nil {
		return nil
	}
	if err := s.storage.Remove(c, StorageKey); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Debug().Msg("cleared cart")
	return nil
}

// replace persists lines, removing the key when nothing is left.
func (s *Store) replace(c context.Context, lines []Line) error {
	if len(lines) == 0 {
		return s.Clear(c)
	}
	return s.save(c, lines)
}
