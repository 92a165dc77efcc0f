package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/order/pkg/client"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

// OrderCreator places the order of one shop, order/pkg/client.Client satisfies it.
type OrderCreator interface {
	Create(
		c context.Context,
		userID uuid.UUID,
		credentials client.Credentials,
		order request.Order,
		paymentToken string,
	) (response.Order, error)
}

type CheckoutParams struct {
	UserID          uuid.UUID
	Credentials     client.Credentials
	CustomerName    string
	Email           string
	DeliveryAddress request.Address
	PaymentToken    string
}

type shopLines struct {
	shopID uuid.UUID
	lines  []Line
}

// groupByShop keeps the order in which shops first appear in the cart.
func groupByShop(lines []Line) []shopLines {
	groups := []shopLines{}
	index := map[uuid.UUID]int{}
	for _, line := range lines {
		i, ok := index[line.Shop]
		if !ok {
			i = len(groups)
			index[line.Shop] = i
			groups = append(groups, shopLines{shopID: line.Shop})
		}
		groups[i].lines = append(groups[i].lines, line)
	}
	return groups
}

// Checkout places one order per shop in the cart. The cart is cleared when every order
// succeeds, otherwise only the lines of the failed shops stay in it, in their cart order.
// When no order succeeds the cart is left untouched. The created orders are returned
// together with the first failure.
func Checkout(
	c context.Context,
	store *Store,
	creator OrderCreator,
	params CheckoutParams,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "cart").
		Str(constants.KEY_PROCESS, "Checkout").
		Str(constants.KEY_USER_ID, params.UserID.String()).
		Logger()

	lines := store.GetCart(c)
	if len(lines) == 0 {
		inOtel.RecordError(ErrEmptyCart, span)
		logger.Error().Err(ErrEmptyCart).Msg(ErrEmptyCart.Error())
		return nil, ErrEmptyCart
	}

	orders := []response.Order{}
	failedShops := map[uuid.UUID]bool{}
	var firstErr error
	for _, group := range groupByShop(lines) {
		shopLogger := logger.With().Str(constants.KEY_SHOP_ID, group.shopID.String()).Logger()

		order := request.Order{
			ShopID:          group.shopID,
			CustomerName:    params.CustomerName,
			Email:           params.Email,
			DeliveryAddress: params.DeliveryAddress,
			Lines:           make([]request.OrderLine, 0, len(group.lines)),
		}
		for _, line := range group.lines {
			order.Lines = append(order.Lines, request.OrderLine{
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
			})
		}

		shopLogger.Info().Msg("placing order")
		created, err := creator.Create(c, params.UserID, params.Credentials, order, params.PaymentToken)
		if err != nil {
			err = fmt.Errorf("failed placing order of shop=%s with error=%w", group.shopID, err)
			inOtel.RecordError(err, span)
			shopLogger.Error().Err(err).Msg(err.Error())
			failedShops[group.shopID] = true
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		shopLogger.Info().Str(constants.KEY_ORDER_ID, created.ID.String()).Msg("placed order")
		orders = append(orders, created)
	}

	if len(orders) == 0 {
		return orders, firstErr
	}
	remaining := []Line{}
	for _, line := range lines {
		if failedShops[line.Shop] {
			remaining = append(remaining, line)
		}
	}
	if err := store.replace(c, remaining); err != nil {
		err = fmt.Errorf("failed updating cart after checkout with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orders, errors.Join(firstErr, err)
	}
	return orders, firstErr
}
