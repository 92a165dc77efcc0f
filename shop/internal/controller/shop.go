package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/shop/internal/otel"
	"github.com/Alturino/storefront/shop/pkg/request"
	"github.com/Alturino/storefront/shop/pkg/response"
)

type ShopService interface {
	InsertShop(c context.Context, ownerID uuid.UUID, param request.InsertShop) (response.Shop, error)
	FindShops(c context.Context) ([]response.Shop, error)
	FindShopsByOwnerId(c context.Context, ownerID uuid.UUID) ([]response.Shop, error)
	FindShopById(c context.Context, id uuid.UUID) (response.Shop, error)
}

type ShopController struct {
	service  ShopService
	validate *validator.Validate
}

func AttachShopController(router *mux.Router, service ShopService, secretKey string) {
	controller := ShopController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/shops", controller.FindShops).Methods(http.MethodGet)
	api.HandleFunc("/shop/{shopId}", controller.FindShopById).Methods(http.MethodGet)

	self := api.NewRoute().Subrouter()
	self.Use(middleware.Auth(secretKey), middleware.IsSelf)
	self.HandleFunc("/shops/by/{userId}", controller.InsertShop).Methods(http.MethodPost)
	self.HandleFunc("/shops/by/{userId}", controller.FindShopsByOwnerId).Methods(http.MethodGet)
}

func (ctrl *ShopController) InsertShop(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShopController InsertShop")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopController InsertShop").
		Logger()

	ownerID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Str(constants.KEY_USER_ID, ownerID.String()).Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	param := request.InsertShop{}
	if err = json.NewDecoder(r.Body).Decode(&param); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	if err = ctrl.validate.StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting shop").Logger()
	logger.Trace().Msg("inserting shop")
	c = logger.WithContext(c)
	shop, err := ctrl.service.InsertShop(c, ownerID, param)
	if err != nil {
		err = fmt.Errorf("failed inserting shop with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, inHttp.StatusFromError(err), err.Error())
		return
	}
	logger.Info().Str(constants.KEY_SHOP_ID, shop.ID.String()).Msg("inserted shop")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusCreated,
		"message":    "shop created",
		"data":       map[string]interface{}{"shop": shop},
	})
}

func (ctrl *ShopController) FindShops(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShopController FindShops")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopController FindShops").
		Logger()

	c = logger.WithContext(c)
	shops, err := ctrl.service.FindShops(c)
	if err != nil {
		err = fmt.Errorf("failed finding shops with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, inHttp.StatusFromError(err), err.Error())
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "shops found",
		"data":       map[string]interface{}{"shops": shops},
	})
}

func (ctrl *ShopController) FindShopsByOwnerId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShopController FindShopsByOwnerId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopController FindShopsByOwnerId").
		Logger()

	ownerID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}

	c = logger.WithContext(c)
	shops, err := ctrl.service.FindShopsByOwnerId(c, ownerID)
	if err != nil {
		err = fmt.Errorf("failed finding shops with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, inHttp.StatusFromError(err), err.Error())
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "shops found",
		"data":       map[string]interface{}{"shops": shops},
	})
}

func (ctrl *ShopController) FindShopById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShopController FindShopById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopController FindShopById").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}

	c = logger.WithContext(c)
	shop, err := ctrl.service.FindShopById(c, shopID)
	if err != nil {
		err = fmt.Errorf("failed finding shop with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, inHttp.StatusFromError(err), err.Error())
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "shop found",
		"data":       map[string]interface{}{"shop": shop},
	})
}
