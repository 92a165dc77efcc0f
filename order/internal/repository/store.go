package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
)

// Store groups the order queries that must run inside one transaction.
type Store struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewStore(pool *pgxpool.Pool, queries *repository.Queries) *Store {
	return &Store{pool: pool, queries: queries}
}

func (s *Store) inTx(c context.Context, fn func(q *repository.Queries) error) error {
	c, span := otel.Tracer.Start(c, "Store inTx")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Store inTx").
		Str(constants.KEY_PROCESS, "initializing transaction").
		Logger()

	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("initialized transaction")
	defer func() {
		logger := logger.With().Str(constants.KEY_PROCESS, "rolling back transaction").Logger()
		err := tx.Rollback(c)
		if err != nil {
			if errors.Is(err, pgx.ErrTxClosed) {
				return
			}
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		span.AddEvent("rolled back transaction")
		logger.Trace().Msg("rolled back transaction")
	}()

	if err = fn(s.queries.WithTx(tx)); err != nil {
		otel.RecordError(err, span)
		return err
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("committed transaction")

	return nil
}

func (s *Store) FindProductsByIds(c context.Context, ids []uuid.UUID) ([]repository.Product, error) {
	strIds := make([]string, 0, len(ids))
	for _, id := range ids {
		strIds = append(strIds, id.String())
	}
	return s.queries.FindProductsByIds(c, strIds)
}

// InsertOrder writes the order and all of its lines, or nothing.
func (s *Store) InsertOrder(
	c context.Context,
	order repository.InsertOrderParams,
	lines []repository.InsertOrderLineParams,
) (insertedOrder repository.Order, insertedLines []repository.OrderLine, err error) {
	err = s.inTx(c, func(q *repository.Queries) error {
		insertedOrder, err = q.InsertOrder(c, order)
		if err != nil {
			return fmt.Errorf("failed inserting order with error=%w", err)
		}
		for i := range lines {
			lines[i].OrderID = insertedOrder.ID
		}
		insertedLines, err = q.InsertOrderLines(c, lines)
		if err != nil {
			return fmt.Errorf("failed inserting order lines with error=%w", err)
		}
		return nil
	})
	return insertedOrder, insertedLines, err
}

func (s *Store) FindOrderById(
	c context.Context,
	id uuid.UUID,
) (repository.Order, []repository.OrderLine, error) {
	order, err := s.queries.FindOrderById(c, id)
	if err != nil {
		return repository.Order{}, nil, err
	}
	lines, err := s.queries.FindOrderLinesByOrderIds(c, []string{id.String()})
	if err != nil {
		return repository.Order{}, nil, err
	}
	return order, lines, nil
}

// FindOrdersByShopId returns the shop's orders newest first with their lines keyed by order id.
func (s *Store) FindOrdersByShopId(
	c context.Context,
	shopID uuid.UUID,
) ([]repository.Order, map[uuid.UUID][]repository.OrderLine, error) {
	orders, err := s.queries.FindOrdersByShopId(c, shopID)
	if err != nil {
		return nil, nil, err
	}
	lines := map[uuid.UUID][]repository.OrderLine{}
	if len(orders) == 0 {
		return orders, lines, nil
	}

	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID.String())
	}
	allLines, err := s.queries.FindOrderLinesByOrderIds(c, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, line := range allLines {
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}
	return orders, lines, nil
}

func (s *Store) UpdateOrderStatus(
	c context.Context,
	arg repository.UpdateOrderStatusParams,
) (repository.Order, error) {
	return s.queries.UpdateOrderStatus(c, arg)
}

func (s *Store) UpdateOrderLineStatus(
	c context.Context,
	arg repository.UpdateOrderLineStatusParams,
) (repository.OrderLine, error) {
	return s.queries.UpdateOrderLineStatus(c, arg)
}

// InsertCharge records the charge and, when status is not empty, moves the addressed
// line or the whole order to it in the same transaction.
func (s *Store) InsertCharge(
	c context.Context,
	charge repository.InsertOrderChargeParams,
	status string,
) (repository.OrderCharge, error) {
	var inserted repository.OrderCharge
	err := s.inTx(c, func(q *repository.Queries) (err error) {
		inserted, err = q.InsertOrderCharge(c, charge)
		if err != nil {
			return fmt.Errorf("failed inserting charge with error=%w", err)
		}
		if status == "" {
			return nil
		}
		if charge.LineID.Valid {
			_, err = q.UpdateOrderLineStatus(c, repository.UpdateOrderLineStatusParams{
				ID:      uuid.UUID(charge.LineID.Bytes),
				OrderID: charge.OrderID,
				Status:  status,
			})
		} else {
			_, err = q.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{
				ID:     charge.OrderID,
				Status: status,
			})
		}
		if err != nil {
			return fmt.Errorf("failed updating status after charge with error=%w", err)
		}
		return nil
	})
	return inserted, err
}
