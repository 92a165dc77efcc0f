package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/constants"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	productErrors "github.com/Alturino/storefront/product/internal/errors"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

type ProductService interface {
	InsertProduct(c context.Context, shopID uuid.UUID, param request.InsertProduct) (response.Product, error)
	FindProductsByShopId(c context.Context, shopID uuid.UUID) ([]response.Product, error)
	FindLatestProducts(c context.Context) ([]response.Product, error)
	FindRelatedProducts(c context.Context, productID uuid.UUID) ([]response.Product, error)
	FindCategories(c context.Context) ([]string, error)
	SearchProducts(c context.Context, param request.SearchProduct) ([]response.Product, error)
	FindProductById(c context.Context, id uuid.UUID) (response.Product, error)
	FindProductImage(c context.Context, id uuid.UUID) ([]byte, string, error)
	UpdateProduct(
		c context.Context,
		shopID uuid.UUID,
		productID uuid.UUID,
		param request.UpdateProduct,
	) (response.Product, error)
	DeleteProduct(c context.Context, shopID uuid.UUID, productID uuid.UUID) error
}

type ProductController struct {
	service  ProductService
	validate *validator.Validate
}

func AttachProductController(
	router *mux.Router,
	service ProductService,
	secretKey string,
	owners middleware.ShopOwnerFinder,
) {
	controller := ProductController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", controller.SearchProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/latest", controller.FindLatestProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/categories", controller.FindCategories).Methods(http.MethodGet)
	api.HandleFunc("/products/related/{productId}", controller.FindRelatedProducts).
		Methods(http.MethodGet)
	api.HandleFunc("/products/by/{shopId}", controller.FindProductsByShopId).Methods(http.MethodGet)
	api.HandleFunc("/product/image/{productId}", controller.FindProductImage).Methods(http.MethodGet)
	api.HandleFunc("/product/{productId}", controller.FindProductById).Methods(http.MethodGet)

	owner := api.NewRoute().Subrouter()
	owner.Use(middleware.Auth(secretKey), middleware.IsOwner(owners))
	owner.HandleFunc("/products/by/{shopId}", controller.InsertProduct).Methods(http.MethodPost)
	owner.HandleFunc("/product/{shopId}/{productId}", controller.UpdateProduct).Methods(http.MethodPut)
	owner.HandleFunc("/product/{shopId}/{productId}", controller.DeleteProduct).
		Methods(http.MethodDelete)
}

func statusCode(err error) int {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, productErrors.ErrInvalidForm),
		errors.Is(err, productErrors.ErrInvalidImage),
		errors.As(err, &validationErrors):
		return http.StatusBadRequest
	default:
		return inHttp.StatusFromError(err)
	}
}

func fail(c context.Context, w http.ResponseWriter, span trace.Span, logger zerolog.Logger, err error) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
}

func writeProducts(c context.Context, w http.ResponseWriter, message string, products []response.Product) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    message,
		"data":       map[string]interface{}{"products": products},
	})
}

func (ctrl *ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController InsertProduct").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}
	logger = logger.With().Str(constants.KEY_SHOP_ID, shopID.String()).Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "parsing product form").Logger()
	logger.Trace().Msg("parsing product form")
	form, err := parseProductForm(r)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed parsing product form with error=%w", err))
		return
	}
	param := form.insert()
	if err = ctrl.validate.StructCtx(c, param); err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed validating product form with error=%w", err))
		return
	}
	logger.Trace().Msg("parsed product form")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting product").Logger()
	logger.Trace().Msg("inserting product")
	c = logger.WithContext(c)
	product, err := ctrl.service.InsertProduct(c, shopID, param)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed inserting product with error=%w", err))
		return
	}
	logger.Info().Str(constants.KEY_PRODUCT_ID, product.ID.String()).Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusCreated,
		"message":    "product created",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) FindProductsByShopId(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductsByShopId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindProductsByShopId").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}

	c = logger.WithContext(c)
	products, err := ctrl.service.FindProductsByShopId(c, shopID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding products with error=%w", err))
		return
	}
	writeProducts(c, w, "products found", products)
}

func (ctrl *ProductController) FindLatestProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindLatestProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindLatestProducts").
		Logger()

	c = logger.WithContext(c)
	products, err := ctrl.service.FindLatestProducts(c)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding latest products with error=%w", err))
		return
	}
	writeProducts(c, w, "latest products found", products)
}

func (ctrl *ProductController) FindRelatedProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindRelatedProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindRelatedProducts").
		Logger()

	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}

	c = logger.WithContext(c)
	products, err := ctrl.service.FindRelatedProducts(c, productID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding related products with error=%w", err))
		return
	}
	writeProducts(c, w, "related products found", products)
}

func (ctrl *ProductController) FindCategories(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindCategories").
		Logger()

	c = logger.WithContext(c)
	categories, err := ctrl.service.FindCategories(c)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding categories with error=%w", err))
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "categories found",
		"data":       map[string]interface{}{"categories": categories},
	})
}

func (ctrl *ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController SearchProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController SearchProducts").
		Logger()

	query := r.URL.Query()
	param := request.SearchProduct{Search: query.Get("search"), Category: query.Get("category")}

	c = logger.WithContext(c)
	products, err := ctrl.service.SearchProducts(c, param)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed searching products with error=%w", err))
		return
	}
	writeProducts(c, w, "products found", products)
}

func (ctrl *ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindProductById").
		Logger()

	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}
	logger = logger.With().
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Str(constants.KEY_PROCESS, "finding product").
		Logger()

	logger.Trace().Msg("finding product")
	c = logger.WithContext(c)
	product, err := ctrl.service.FindProductById(c, productID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding product with error=%w", err))
		return
	}
	logger.Trace().Msg("found product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "product found",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) FindProductImage(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductImage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindProductImage").
		Logger()

	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}

	c = logger.WithContext(c)
	data, contentType, err := ctrl.service.FindProductImage(c, productID)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed finding product image with error=%w", err))
		return
	}

	w.Header().Set(inHttp.KEY_HEADER_CONTENT_TYPE, contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(data); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
}

func (ctrl *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController UpdateProduct").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}
	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}
	logger = logger.With().
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "parsing product form").Logger()
	logger.Trace().Msg("parsing product form")
	form, err := parseProductForm(r)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed parsing product form with error=%w", err))
		return
	}
	param := form.update()
	if err = ctrl.validate.StructCtx(c, param); err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed validating product form with error=%w", err))
		return
	}
	logger.Trace().Msg("parsed product form")

	logger = logger.With().Str(constants.KEY_PROCESS, "updating product").Logger()
	logger.Trace().Msg("updating product")
	c = logger.WithContext(c)
	product, err := ctrl.service.UpdateProduct(c, shopID, productID, param)
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed updating product with error=%w", err))
		return
	}
	logger.Info().Msg("updated product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "product updated",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController DeleteProduct").
		Logger()

	shopID, err := inHttp.PathUUID(r, "shopId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}
	productID, err := inHttp.PathUUID(r, "productId")
	if err != nil {
		fail(c, w, span, logger, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err))
		return
	}
	logger = logger.With().
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Str(constants.KEY_PROCESS, "removing product").
		Logger()

	logger.Trace().Msg("removing product")
	c = logger.WithContext(c)
	if err = ctrl.service.DeleteProduct(c, shopID, productID); err != nil {
		fail(c, w, span, logger, fmt.Errorf("failed removing product with error=%w", err))
		return
	}
	logger.Info().Msg("removed product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "product removed",
		"data":       map[string]interface{}{"product_id": productID},
	})
}
