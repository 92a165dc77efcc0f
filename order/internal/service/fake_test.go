package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/inventory"
	"github.com/Alturino/storefront/order/pkg/status"
)

type fakeStore struct {
	mu             sync.Mutex
	products       map[uuid.UUID]repository.Product
	orders         map[uuid.UUID]repository.Order
	lines          map[uuid.UUID][]repository.OrderLine
	charges        []repository.OrderCharge
	insertOrderErr error
	clock          time.Time
}

func newFakeStore(products ...repository.Product) *fakeStore {
	s := &fakeStore{
		products: map[uuid.UUID]repository.Product{},
		orders:   map[uuid.UUID]repository.Order{},
		lines:    map[uuid.UUID][]repository.OrderLine{},
		clock:    time.Date(2024, 11, 25, 10, 0, 0, 0, time.UTC),
	}
	for _, product := range products {
		s.products[product.ID] = product
	}
	return s
}

func (s *fakeStore) now() pgtype.Timestamptz {
	s.clock = s.clock.Add(time.Second)
	return pgtype.Timestamptz{Time: s.clock, Valid: true}
}

func (s *fakeStore) FindProductsByIds(c context.Context, ids []uuid.UUID) ([]repository.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := []repository.Product{}
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (s *fakeStore) InsertOrder(
	c context.Context,
	order repository.InsertOrderParams,
	lines []repository.InsertOrderLineParams,
) (repository.Order, []repository.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertOrderErr != nil {
		return repository.Order{}, nil, s.insertOrderErr
	}
	createdAt := s.now()
	inserted := repository.Order{
		ID:              uuid.New(),
		UserID:          order.UserID,
		ShopID:          order.ShopID,
		CustomerName:    order.CustomerName,
		Email:           order.Email,
		DeliveryAddress: order.DeliveryAddress,
		PaymentToken:    order.PaymentToken,
		Amount:          order.Amount,
		Status:          status.NotProcessed,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	insertedLines := make([]repository.OrderLine, 0, len(lines))
	for _, line := range lines {
		insertedLines = append(insertedLines, repository.OrderLine{
			ID:          uuid.New(),
			OrderID:     inserted.ID,
			Position:    line.Position,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Status:      status.NotProcessed,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		})
	}
	s.orders[inserted.ID] = inserted
	s.lines[inserted.ID] = insertedLines
	return inserted, insertedLines, nil
}

func (s *fakeStore) FindOrderById(c context.Context, id uuid.UUID) (repository.Order, []repository.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return repository.Order{}, nil, pgx.ErrNoRows
	}
	return order, append([]repository.OrderLine{}, s.lines[id]...), nil
}

func (s *fakeStore) FindOrdersByShopId(
	c context.Context,
	shopID uuid.UUID,
) ([]repository.Order, map[uuid.UUID][]repository.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []repository.Order{}
	lines := map[uuid.UUID][]repository.OrderLine{}
	for id, order := range s.orders {
		if order.ShopID == shopID {
			orders = append(orders, order)
			lines[id] = append([]repository.OrderLine{}, s.lines[id]...)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Time.After(orders[j].CreatedAt.Time)
	})
	return orders, lines, nil
}

func (s *fakeStore) UpdateOrderStatus(
	c context.Context,
	arg repository.UpdateOrderStatusParams,
) (repository.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[arg.ID]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	order.Status = arg.Status
	order.UpdatedAt = s.now()
	s.orders[arg.ID] = order
	return order, nil
}

func (s *fakeStore) UpdateOrderLineStatus(
	c context.Context,
	arg repository.UpdateOrderLineStatusParams,
) (repository.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.lines[arg.OrderID]
	for i := range lines {
		if lines[i].ID == arg.ID {
			lines[i].Status = arg.Status
			lines[i].UpdatedAt = s.now()
			return lines[i], nil
		}
	}
	return repository.OrderLine{}, pgx.ErrNoRows
}

func (s *fakeStore) InsertCharge(
	c context.Context,
	charge repository.InsertOrderChargeParams,
	nextStatus string,
) (repository.OrderCharge, error) {
	inserted := repository.OrderCharge{
		ID:       uuid.New(),
		OrderID:  charge.OrderID,
		LineID:   charge.LineID,
		UserID:   charge.UserID,
		ChargeID: charge.ChargeID,
		Amount:   charge.Amount,
		Status:   charge.Status,
	}
	s.mu.Lock()
	s.charges = append(s.charges, inserted)
	s.mu.Unlock()

	if nextStatus == "" {
		return inserted, nil
	}
	var err error
	if charge.LineID.Valid {
		_, err = s.UpdateOrderLineStatus(c, repository.UpdateOrderLineStatusParams{
			ID:      uuid.UUID(charge.LineID.Bytes),
			OrderID: charge.OrderID,
			Status:  nextStatus,
		})
	} else {
		_, err = s.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{ID: charge.OrderID, Status: nextStatus})
	}
	return inserted, err
}

type stockCall struct {
	direction string
	lines     []inventory.Line
}

// fakeStock keeps quantities in memory without a floor, like the default adjuster.
type fakeStock struct {
	mu          sync.Mutex
	quantities  map[uuid.UUID]int32
	calls       []stockCall
	decreaseErr error
	increaseErr error
}

func newFakeStock(quantities map[uuid.UUID]int32) *fakeStock {
	return &fakeStock{quantities: quantities}
}

func (s *fakeStock) DecreaseQuantity(c context.Context, lines []inventory.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stockCall{direction: "decrease", lines: lines})
	if s.decreaseErr != nil {
		return s.decreaseErr
	}
	for _, line := range lines {
		s.quantities[line.ProductID] -= line.Quantity
	}
	return nil
}

func (s *fakeStock) IncreaseQuantity(c context.Context, productID uuid.UUID, quantity int32) error {
	return s.IncreaseQuantities(c, []inventory.Line{{ProductID: productID, Quantity: quantity}})
}

func (s *fakeStock) IncreaseQuantities(c context.Context, lines []inventory.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stockCall{direction: "increase", lines: lines})
	if s.increaseErr != nil {
		return s.increaseErr
	}
	for _, line := range lines {
		s.quantities[line.ProductID] += line.Quantity
	}
	return nil
}

func (s *fakeStock) quantity(productID uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantities[productID]
}
