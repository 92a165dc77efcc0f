// Package inventory applies stock adjustments for order lines as single-transaction batches.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/otel"
)

const (
	decreaseQuantity = `UPDATE products SET quantity = quantity - $1, updated_at = now() WHERE id = $2`

	decreaseQuantityWithFloor = `UPDATE products SET quantity = quantity - $1, updated_at = now() WHERE id = $2 AND quantity >= $1`

	increaseQuantity = `UPDATE products SET quantity = quantity + $1, updated_at = now() WHERE id = $2`

	productExists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
)

type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

type TxBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

type Option func(*Adjuster)

// WithStockFloor rejects a decrease that would take any product below zero.
func WithStockFloor() Option {
	return func(a *Adjuster) {
		a.stockFloor = true
	}
}

type Adjuster struct {
	db         TxBeginner
	stockFloor bool
}

func NewAdjuster(db TxBeginner, opts ...Option) *Adjuster {
	a := &Adjuster{db: db}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DecreaseQuantity subtracts every line's quantity in one transaction.
// Without WithStockFloor stock may go negative under concurrent orders.
func (a *Adjuster) DecreaseQuantity(c context.Context, lines []Line) (err error) {
	c, span := otel.Tracer.Start(c, "Adjuster DecreaseQuantity")
	defer span.End()
	defer func() { observe(directionDecrease, err) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Adjuster DecreaseQuantity").
		Str(constants.KEY_ADJUST_DIRECTION, directionDecrease).
		Bool("stockFloor", a.stockFloor).
		Any(constants.KEY_ORDER_LINES, lines).
		Logger()
	c = logger.WithContext(c)

	statement := decreaseQuantity
	if a.stockFloor {
		statement = decreaseQuantityWithFloor
	}

	logger.Trace().Msg("decreasing product quantity")
	err = a.apply(c, statement, lines)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("decreased product quantity")

	return nil
}

func (a *Adjuster) IncreaseQuantity(c context.Context, productID uuid.UUID, quantity int32) error {
	return a.IncreaseQuantities(c, []Line{{ProductID: productID, Quantity: quantity}})
}

// IncreaseQuantities adds every line's quantity back in one transaction.
func (a *Adjuster) IncreaseQuantities(c context.Context, lines []Line) (err error) {
	c, span := otel.Tracer.Start(c, "Adjuster IncreaseQuantities")
	defer span.End()
	defer func() { observe(directionIncrease, err) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Adjuster IncreaseQuantities").
		Str(constants.KEY_ADJUST_DIRECTION, directionIncrease).
		Any(constants.KEY_ORDER_LINES, lines).
		Logger()
	c = logger.WithContext(c)

	logger.Trace().Msg("increasing product quantity")
	err = a.apply(c, increaseQuantity, lines)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("increased product quantity")

	return nil
}

func (a *Adjuster) apply(c context.Context, statement string, lines []Line) error {
	logger := zerolog.Ctx(c).With().Str(constants.KEY_PROCESS, "validating lines").Logger()

	if len(lines) == 0 {
		logger.Trace().Msg("no lines to adjust")
		return nil
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return fmt.Errorf(
				"failed validating productId=%s quantity=%d with error=%w",
				line.ProductID,
				line.Quantity,
				ErrInvalidQuantity,
			)
		}
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := a.db.Begin(c)
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().Err(err).Msg("failed rolling back transaction")
		}
	}()
	logger.Trace().Msg("initialized transaction")

	logger = logger.With().Str(constants.KEY_PROCESS, "sending batch").Logger()
	logger.Trace().Msg("sending batch")
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(statement, line.Quantity, line.ProductID)
	}
	results := tx.SendBatch(c, batch)
	unmatched := -1
	for i := range lines {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf(
				"failed adjusting productId=%s with error=%w",
				lines[i].ProductID,
				err,
			)
		}
		if tag.RowsAffected() == 0 {
			unmatched = i
			break
		}
	}
	if err = results.Close(); err != nil {
		return fmt.Errorf("failed closing batch with error=%w", err)
	}
	logger.Trace().Msg("sent batch")

	if unmatched >= 0 {
		return a.unmatchedError(c, tx, lines[unmatched])
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	logger.Trace().Msg("committed transaction")

	return nil
}

// unmatchedError tells a missing product apart from a floor rejection.
func (a *Adjuster) unmatchedError(c context.Context, tx pgx.Tx, line Line) error {
	var exists bool
	err := tx.QueryRow(c, productExists, line.ProductID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed checking productId=%s exists with error=%w", line.ProductID, err)
	}
	if !exists {
		return fmt.Errorf("failed adjusting productId=%s with error=%w", line.ProductID, ErrProductNotFound)
	}
	return fmt.Errorf(
		"failed decreasing productId=%s by quantity=%d with error=%w",
		line.ProductID,
		line.Quantity,
		ErrOutOfStock,
	)
}
