package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/token"
	"github.com/Alturino/storefront/inventory"
	orderErrors "github.com/Alturino/storefront/order/internal/errors"
	"github.com/Alturino/storefront/order/internal/otel"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

type OrderService interface {
	CreateOrder(c context.Context, userID uuid.UUID, param request.CreateOrder) (response.Order, error)
	FindOrdersByShopId(c context.Context, shopID uuid.UUID) ([]response.Order, error)
	StatusValues() []string
	CancelProduct(
		c context.Context,
		shopID uuid.UUID,
		productID uuid.UUID,
		param request.CancelProduct,
	) (response.Order, error)
	ProcessCharge(
		c context.Context,
		orderID uuid.UUID,
		userID uuid.UUID,
		shopID uuid.UUID,
		param request.ProcessCharge,
	) (response.Order, error)
	UpdateStatus(c context.Context, shopID uuid.UUID, param request.UpdateStatus) (response.Order, error)
}

type OrderController struct {
	service  OrderService
	validate *validator.Validate
}

func AttachOrderController(
	router *mux.Router,
	service OrderService,
	secretKey string,
	owners middleware.ShopOwnerFinder,
) {
	controller := OrderController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/order/status_values", controller.StatusValues).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Auth(secretKey))
	authed.HandleFunc("/orders/{userId}", controller.CreateOrder).Methods(http.MethodPost)

	owner := authed.NewRoute().Subrouter()
	owner.Use(middleware.IsOwner(owners))
	owner.HandleFunc("/orders/shop/{shopId}", controller.FindOrdersByShopId).Methods(http.MethodGet)
	owner.HandleFunc("/order/status/{shopId}", controller.UpdateStatus).Methods(http.MethodPut)
	owner.HandleFunc("/order/{shopId}/cancel/{productId}", controller.CancelProduct).
		Methods(http.MethodPut)
	owner.HandleFunc("/order/{orderId}/charge/{userId}/{shopId}", controller.ProcessCharge).
		Methods(http.MethodPut)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, orderErrors.ErrInvalidStatus),
		errors.Is(err, orderErrors.ErrInvalidOrder),
		errors.Is(err, orderErrors.ErrProductNotInShop),
		errors.Is(err, orderErrors.ErrQuantityMismatch),
		errors.Is(err, inventory.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrOutOfStock):
		return http.StatusConflict
	default:
		return inHttp.StatusFromError(err)
	}
}

func (s *OrderController) decode(c context.Context, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body with error=%w", err)
	}
	if err := s.validate.StructCtx(c, dst); err != nil {
		return fmt.Errorf("failed validating request body with error=%w", err)
	}
	return nil
}

func (s *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderController CreateOrder").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "validating userId").Logger()
	logger.Trace().Msg("validating userId")
	userID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	tokenUserID, err := token.UserIdFromContext(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusUnauthorized, err.Error())
		return
	}
	if tokenUserID != userID {
		err = fmt.Errorf("failed matching userId=%s with token subject with error=%w", userID, inErrors.ErrForbidden)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusForbidden, err.Error())
		return
	}
	logger = logger.With().Str(constants.KEY_USER_ID, userID.String()).Logger()
	logger.Trace().Msg("validated userId")

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	param := request.CreateOrder{}
	if err = s.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Trace().Object(constants.KEY_ORDER, param).Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "creating order").Logger()
	logger.Trace().Msg("creating order")
	c = logger.WithContext(c)
	order, err := s.service.CreateOrder(c, userID, param)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
		return
	}
	logger.Info().Str(constants.KEY_ORDER_ID, order.ID.String()).Msg("created order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusCreated,
		"message":    "order created",
		"data":       map[string]interface{}{"order": order},
	})
}

func (s *OrderController) FindOrdersByShopId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrdersByShopId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderController FindOrdersByShopId").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().
		Str(constants.KEY_PROCESS, "finding orders").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Logger()
	logger.Trace().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := s.service.FindOrdersByShopId(c, shopID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
		return
	}
	logger.Trace().Int(constants.KEY_ORDERS, len(orders)).Msg("found orders")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "found orders",
		"data":       map[string]interface{}{"orders": orders},
	})
}

func (s *OrderController) StatusValues(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController StatusValues")
	defer span.End()

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "found status values",
		"data":       map[string]interface{}{"status_values": s.service.StatusValues()},
	})
}

func (s *OrderController) CancelProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CancelProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderController CancelProduct").
		Str(constants.KEY_PROCESS, "validating request").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	param := request.CancelProduct{}
	if err = s.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().
		Str(constants.KEY_PROCESS, "cancelling product").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Logger()
	logger.Trace().Msg("cancelling product")
	c = logger.WithContext(c)
	order, err := s.service.CancelProduct(c, shopID, productID, param)
	if err != nil {
		err = fmt.Errorf("failed cancelling product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
		return
	}
	logger.Info().Msg("cancelled product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "product cancelled",
		"data":       map[string]interface{}{"order": order},
	})
}

func (s *OrderController) ProcessCharge(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController ProcessCharge")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderController ProcessCharge").
		Str(constants.KEY_PROCESS, "validating request").
		Logger()

	ids := map[string]uuid.UUID{}
	for _, name := range []string{"orderId", "userId", "shopId"} {
		id, err := inHttp.PathUUID(r, name)
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
			return
		}
		ids[name] = id
	}
	param := request.ProcessCharge{}
	if err := s.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().
		Str(constants.KEY_PROCESS, "processing charge").
		Str(constants.KEY_ORDER_ID, ids["orderId"].String()).
		Str(constants.KEY_SHOP_ID, ids["shopId"].String()).
		Logger()
	logger.Trace().Msg("processing charge")
	c = logger.WithContext(c)
	order, err := s.service.ProcessCharge(c, ids["orderId"], ids["userId"], ids["shopId"], param)
	if err != nil {
		err = fmt.Errorf("failed processing charge with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
		return
	}
	logger.Info().Msg("processed charge")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "charge processed",
		"data":       map[string]interface{}{"order": order},
	})
}

func (s *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController UpdateStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "OrderController UpdateStatus").
		Str(constants.KEY_PROCESS, "validating request").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	param := request.UpdateStatus{}
	if err = s.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().
		Str(constants.KEY_PROCESS, "updating status").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_ORDER_STATUS, param.Status).
		Logger()
	logger.Trace().Msg("updating status")
	c = logger.WithContext(c)
	order, err := s.service.UpdateStatus(c, shopID, param)
	if err != nil {
		err = fmt.Errorf("failed updating status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
		return
	}
	logger.Info().Msg("updated status")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "status updated",
		"data":       map[string]interface{}{"order": order},
	})
}
