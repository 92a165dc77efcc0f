package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/inventory"
	orderErrors "github.com/Alturino/storefront/order/internal/errors"
	"github.com/Alturino/storefront/order/internal/otel"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
	"github.com/Alturino/storefront/order/pkg/status"
)

const EventOrderCreated = "order.created"

type Store interface {
	FindProductsByIds(c context.Context, ids []uuid.UUID) ([]repository.Product, error)
	InsertOrder(
		c context.Context,
		order repository.InsertOrderParams,
		lines []repository.InsertOrderLineParams,
	) (repository.Order, []repository.OrderLine, error)
	FindOrderById(c context.Context, id uuid.UUID) (repository.Order, []repository.OrderLine, error)
	FindOrdersByShopId(
		c context.Context,
		shopID uuid.UUID,
	) ([]repository.Order, map[uuid.UUID][]repository.OrderLine, error)
	UpdateOrderStatus(c context.Context, arg repository.UpdateOrderStatusParams) (repository.Order, error)
	UpdateOrderLineStatus(
		c context.Context,
		arg repository.UpdateOrderLineStatusParams,
	) (repository.OrderLine, error)
	InsertCharge(
		c context.Context,
		charge repository.InsertOrderChargeParams,
		status string,
	) (repository.OrderCharge, error)
}

type StockAdjuster interface {
	DecreaseQuantity(c context.Context, lines []inventory.Line) error
	IncreaseQuantity(c context.Context, productID uuid.UUID, quantity int32) error
	IncreaseQuantities(c context.Context, lines []inventory.Line) error
}

type Publisher interface {
	Publish(c context.Context, channel string, message interface{}) *redis.IntCmd
}

type OrderService struct {
	store     Store
	stock     StockAdjuster
	publisher Publisher
}

func NewOrderService(store Store, stock StockAdjuster, publisher Publisher) *OrderService {
	return &OrderService{store: store, stock: stock, publisher: publisher}
}

func (s *OrderService) StatusValues() []string {
	return status.Values()
}

// CreateOrder takes stock for every line first and only then writes the order.
// When the write fails the stock is given back.
func (s *OrderService) CreateOrder(
	c context.Context,
	userID uuid.UUID,
	param request.CreateOrder,
) (res response.Order, err error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()
	defer func() { observe("create", err) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService CreateOrder").
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_SHOP_ID, param.Order.ShopID.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating order").Logger()
	logger.Trace().Msg("validating order")
	if len(param.Order.Lines) == 0 {
		err = fmt.Errorf("failed validating order with error=%w: no lines", orderErrors.ErrInvalidOrder)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	productIDs := make([]uuid.UUID, 0, len(param.Order.Lines))
	for _, line := range param.Order.Lines {
		if line.Quantity < 1 {
			err = fmt.Errorf(
				"failed validating productId=%s with error=%w",
				line.ProductID,
				inventory.ErrInvalidQuantity,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		productIDs = append(productIDs, line.ProductID)
	}
	logger.Trace().Msg("validated order")

	logger = logger.With().Str(constants.KEY_PROCESS, "finding products").Logger()
	logger.Trace().Msg("finding products")
	c = logger.WithContext(c)
	products, err := s.store.FindProductsByIds(c, productIDs)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	productByID := make(map[uuid.UUID]repository.Product, len(products))
	for _, product := range products {
		productByID[product.ID] = product
	}
	logger.Trace().Int(constants.KEY_PRODUCTS, len(products)).Msg("found products")

	logger = logger.With().Str(constants.KEY_PROCESS, "snapshotting lines").Logger()
	logger.Trace().Msg("snapshotting lines")
	amount := decimal.Zero
	lineParams := make([]repository.InsertOrderLineParams, 0, len(param.Order.Lines))
	stockLines := make([]inventory.Line, 0, len(param.Order.Lines))
	for i, line := range param.Order.Lines {
		product, ok := productByID[line.ProductID]
		if !ok {
			err = fmt.Errorf("failed finding productId=%s with error=%w", line.ProductID, inventory.ErrProductNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if product.ShopID != param.Order.ShopID {
			err = fmt.Errorf(
				"failed validating productId=%s shopId=%s with error=%w",
				product.ID,
				product.ShopID,
				orderErrors.ErrProductNotInShop,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		price := repository.DecimalFromNumeric(product.Price)
		amount = amount.Add(price.Mul(decimal.NewFromInt32(line.Quantity)))
		lineParams = append(lineParams, repository.InsertOrderLineParams{
			Position:    int32(i),
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    line.Quantity,
		})
		stockLines = append(stockLines, inventory.Line{ProductID: product.ID, Quantity: line.Quantity})
	}
	logger.Trace().Str("amount", amount.String()).Msg("snapshotted lines")

	logger = logger.With().Str(constants.KEY_PROCESS, "decreasing product quantity").Logger()
	logger.Trace().Msg("decreasing product quantity")
	c = logger.WithContext(c)
	if err = s.stock.DecreaseQuantity(c, stockLines); err != nil {
		err = fmt.Errorf("failed decreasing product quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("decreased product quantity")

	address, err := json.Marshal(param.Order.DeliveryAddress)
	if err != nil {
		err = fmt.Errorf("failed marshaling delivery address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.restock(c, stockLines)
		return response.Order{}, err
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting order").Logger()
	logger.Trace().Msg("inserting order")
	order, lines, err := s.store.InsertOrder(
		c,
		repository.InsertOrderParams{
			UserID:          userID,
			ShopID:          param.Order.ShopID,
			CustomerName:    param.Order.CustomerName,
			Email:           param.Order.Email,
			DeliveryAddress: address,
			PaymentToken:    param.Token,
			Amount:          repository.NumericFromDecimal(amount),
		},
		lineParams,
	)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.restock(c, stockLines)
		return response.Order{}, err
	}
	logger = logger.With().Str(constants.KEY_ORDER_ID, order.ID.String()).Logger()
	logger.Info().Msg("inserted order")

	res, err = order.Response(lines)
	if err != nil {
		err = fmt.Errorf("failed mapping order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	c = logger.WithContext(c)
	s.publish(c, response.Event{Type: EventOrderCreated, Order: res})

	return res, nil
}

// restock is the compensating action of CreateOrder; its failure is only logged.
func (s *OrderService) restock(c context.Context, lines []inventory.Line) {
	c, span := otel.Tracer.Start(c, "OrderService restock")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService restock").
		Str(constants.KEY_PROCESS, "restocking product quantity").
		Logger()

	logger.Warn().Msg("restocking product quantity")
	if err := s.stock.IncreaseQuantities(c, lines); err != nil {
		err = fmt.Errorf("failed restocking product quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Warn().Msg("restocked product quantity")
}

func (s *OrderService) publish(c context.Context, event response.Event) {
	c, span := otel.Tracer.Start(c, "OrderService publish")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService publish").
		Str(constants.KEY_CHANNEL, constants.CHANNEL_ORDER_EVENTS).
		Str(constants.KEY_ORDER_EVENT, event.Type).
		Logger()

	if s.publisher == nil {
		return
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "publishing order event").Logger()
	logger.Trace().Msg("publishing order event")
	payload, err := json.Marshal(event)
	if err != nil {
		err = fmt.Errorf("failed marshaling order event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	if err = s.publisher.Publish(c, constants.CHANNEL_ORDER_EVENTS, payload).Err(); err != nil {
		err = fmt.Errorf("failed publishing order event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("published order event")
}

func (s *OrderService) FindOrdersByShopId(c context.Context, shopID uuid.UUID) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrdersByShopId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService FindOrdersByShopId").
		Str(constants.KEY_PROCESS, "finding orders").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Logger()

	logger.Trace().Msg("finding orders")
	orders, lines, err := s.store.FindOrdersByShopId(c, shopID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(constants.KEY_ORDERS, len(orders)).Msg("found orders")

	logger = logger.With().Str(constants.KEY_PROCESS, "mapping orders").Logger()
	res := make([]response.Order, 0, len(orders))
	for _, order := range orders {
		mapped, err := order.Response(lines[order.ID])
		if err != nil {
			err = fmt.Errorf("failed mapping orderId=%s with error=%w", order.ID, err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		res = append(res, mapped)
	}

	return res, nil
}

// findShopOrder loads the order and hides orders of other shops as not found.
func (s *OrderService) findShopOrder(
	c context.Context,
	shopID uuid.UUID,
	orderID uuid.UUID,
) (repository.Order, []repository.OrderLine, error) {
	order, lines, err := s.store.FindOrderById(c, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Order{}, nil, fmt.Errorf("failed finding orderId=%s with error=%w", orderID, orderErrors.ErrOrderNotFound)
	}
	if err != nil {
		return repository.Order{}, nil, fmt.Errorf("failed finding orderId=%s with error=%w", orderID, err)
	}
	if order.ShopID != shopID {
		return repository.Order{}, nil, fmt.Errorf(
			"failed finding orderId=%s in shopId=%s with error=%w",
			orderID,
			shopID,
			orderErrors.ErrOrderNotFound,
		)
	}
	return order, lines, nil
}

func (s *OrderService) reload(c context.Context, orderID uuid.UUID) (response.Order, error) {
	order, lines, err := s.store.FindOrderById(c, orderID)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed reloading orderId=%s with error=%w", orderID, err)
	}
	return order.Response(lines)
}

func findLine(lines []repository.OrderLine, lineID uuid.UUID) (repository.OrderLine, bool) {
	for _, line := range lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return repository.OrderLine{}, false
}

// CancelProduct restocks the line's quantity and then marks the line Cancelled. The requested
// quantity must equal the line's. Calling it twice restocks twice.
func (s *OrderService) CancelProduct(
	c context.Context,
	shopID uuid.UUID,
	productID uuid.UUID,
	param request.CancelProduct,
) (res response.Order, err error) {
	c, span := otel.Tracer.Start(c, "OrderService CancelProduct")
	defer span.End()
	defer func() { observe("cancel_product", err) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService CancelProduct").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Str(constants.KEY_ORDER_ID, param.OrderID.String()).
		Str(constants.KEY_ORDER_LINE_ID, param.LineID.String()).
		Int32(constants.KEY_PRODUCT_QTY, param.Quantity).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(constants.KEY_PROCESS, "finding order").Logger()
	logger.Trace().Msg("finding order")
	_, lines, err := s.findShopOrder(c, shopID, param.OrderID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	line, ok := findLine(lines, param.LineID)
	if !ok || line.ProductID != productID {
		err = fmt.Errorf("failed finding lineId=%s with error=%w", param.LineID, orderErrors.ErrLineNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if line.Quantity != param.Quantity {
		err = fmt.Errorf(
			"failed cancelling quantity=%d of line quantity=%d with error=%w",
			param.Quantity,
			line.Quantity,
			orderErrors.ErrQuantityMismatch,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("found order")

	logger = logger.With().Str(constants.KEY_PROCESS, "increasing product quantity").Logger()
	logger.Trace().Msg("increasing product quantity")
	if err = s.stock.IncreaseQuantity(c, productID, line.Quantity); err != nil {
		err = fmt.Errorf("failed increasing product quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("increased product quantity")

	logger = logger.With().Str(constants.KEY_PROCESS, "cancelling order line").Logger()
	logger.Trace().Msg("cancelling order line")
	_, err = s.store.UpdateOrderLineStatus(c, repository.UpdateOrderLineStatusParams{
		ID:      line.ID,
		OrderID: param.OrderID,
		Status:  status.Cancelled,
	})
	if err != nil {
		err = fmt.Errorf("failed cancelling order line with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("cancelled order line")

	res, err = s.reload(c, param.OrderID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return res, nil
}

// ProcessCharge records a charge of the order's customer; a succeeded charge moves the
// addressed line, or the whole order, to Processing.
func (s *OrderService) ProcessCharge(
	c context.Context,
	orderID uuid.UUID,
	userID uuid.UUID,
	shopID uuid.UUID,
	param request.ProcessCharge,
) (res response.Order, err error) {
	c, span := otel.Tracer.Start(c, "OrderService ProcessCharge")
	defer span.End()
	defer func() { observe("process_charge", err) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService ProcessCharge").
		Str(constants.KEY_ORDER_ID, orderID.String()).
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_CHARGE, param.ChargeID).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(constants.KEY_PROCESS, "finding order").Logger()
	logger.Trace().Msg("finding order")
	order, lines, err := s.findShopOrder(c, shopID, orderID)
	if err == nil && order.UserID != userID {
		err = fmt.Errorf("failed finding orderId=%s for userId=%s with error=%w", orderID, userID, orderErrors.ErrOrderNotFound)
	}
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	lineID := pgtype.UUID{}
	if param.LineID != nil {
		if _, ok := findLine(lines, *param.LineID); !ok {
			err = fmt.Errorf("failed finding lineId=%s with error=%w", *param.LineID, orderErrors.ErrLineNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		lineID = pgtype.UUID{Bytes: *param.LineID, Valid: true}
	}
	logger.Trace().Msg("found order")

	nextStatus := ""
	if param.Status == status.ChargeSucceeded {
		nextStatus = status.Processing
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting charge").Logger()
	logger.Trace().Msg("inserting charge")
	_, err = s.store.InsertCharge(
		c,
		repository.InsertOrderChargeParams{
			OrderID:  orderID,
			LineID:   lineID,
			UserID:   userID,
			ChargeID: param.ChargeID,
			Amount:   repository.NumericFromDecimal(param.Amount),
			Status:   param.Status,
		},
		nextStatus,
	)
	if err != nil {
		err = fmt.Errorf("failed inserting charge with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("inserted charge")

	res, err = s.reload(c, orderID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return res, nil
}

// UpdateStatus sets the status of one line when LineID is given, otherwise of the order.
// Setting Cancelled here does not restock.
func (s *OrderService) UpdateStatus(
	c context.Context,
	shopID uuid.UUID,
	param request.UpdateStatus,
) (res response.Order, err error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateStatus")
	defer span.End()
	defer func() { observe("update_status", err) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderService UpdateStatus").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_ORDER_ID, param.OrderID.String()).
		Str(constants.KEY_ORDER_STATUS, param.Status).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(constants.KEY_PROCESS, "validating status").Logger()
	logger.Trace().Msg("validating status")
	if !status.IsValid(param.Status) {
		err = fmt.Errorf("failed validating status=%q with error=%w", param.Status, orderErrors.ErrInvalidStatus)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("validated status")

	logger = logger.With().Str(constants.KEY_PROCESS, "finding order").Logger()
	logger.Trace().Msg("finding order")
	_, lines, err := s.findShopOrder(c, shopID, param.OrderID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("found order")

	if param.LineID != nil {
		logger = logger.With().
			Str(constants.KEY_PROCESS, "updating order line status").
			Str(constants.KEY_ORDER_LINE_ID, param.LineID.String()).
			Logger()
		logger.Trace().Msg("updating order line status")
		if _, ok := findLine(lines, *param.LineID); !ok {
			err = fmt.Errorf("failed finding lineId=%s with error=%w", *param.LineID, orderErrors.ErrLineNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		_, err = s.store.UpdateOrderLineStatus(c, repository.UpdateOrderLineStatusParams{
			ID:      *param.LineID,
			OrderID: param.OrderID,
			Status:  param.Status,
		})
	} else {
		logger = logger.With().Str(constants.KEY_PROCESS, "updating order status").Logger()
		logger.Trace().Msg("updating order status")
		_, err = s.store.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{
			ID:     param.OrderID,
			Status: param.Status,
		})
	}
	if err != nil {
		err = fmt.Errorf("failed updating status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("updated status")

	res, err = s.reload(c, param.OrderID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return res, nil
}
