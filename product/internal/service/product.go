package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/product/assets"
	"github.com/Alturino/storefront/product/internal/cache"
	productErrors "github.com/Alturino/storefront/product/internal/errors"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

const (
	LatestLimit  = 5
	RelatedLimit = 5
)

const pgForeignKeyViolation = "23503"

type ProductService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *cache.ProductCache
}

func NewProductService(pool *pgxpool.Pool, productCache *cache.ProductCache) *ProductService {
	return &ProductService{pool: pool, queries: repository.New(pool), cache: productCache}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", productErrors.ErrProductNotFound, err)
	}
	return err
}

func responses(products []repository.Product) []response.Product {
	res := make([]response.Product, 0, len(products))
	for _, product := range products {
		res = append(res, product.Response())
	}
	return res
}

func (svc *ProductService) InsertProduct(
	c context.Context,
	shopID uuid.UUID,
	param request.InsertProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService InsertProduct").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PROCESS, "inserting product to database").
		Logger()

	arg := repository.InsertProductParams{
		ShopID:      shopID,
		Name:        param.Name,
		Description: param.Description,
		Category:    param.Category,
		Price:       repository.NumericFromDecimal(param.Price),
		Quantity:    param.Quantity,
	}
	if param.Image != nil {
		arg.ImageData = param.Image.Data
		arg.ImageContentType = param.Image.ContentType
	}

	logger.Trace().Msg("inserting product to database")
	product, err := svc.queries.InsertProduct(c, arg)
	if err != nil {
		pgErr := &pgconn.PgError{}
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			err = fmt.Errorf("%w: %w", productErrors.ErrShopNotFound, err)
		}
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Str(constants.KEY_PRODUCT_ID, product.ID.String()).Msg("inserted product to database")

	return product.Response(), nil
}

func (svc *ProductService) FindProductsByShopId(
	c context.Context,
	shopID uuid.UUID,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductsByShopId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService FindProductsByShopId").
		Str(constants.KEY_PROCESS, "finding products in database").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Logger()

	logger.Trace().Msg("finding products in database")
	products, err := svc.queries.FindProductsByShopId(c, shopID)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(constants.KEY_PRODUCTS, len(products)).Msg("found products in database")

	return responses(products), nil
}

func (svc *ProductService) FindLatestProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindLatestProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService FindLatestProducts").
		Str(constants.KEY_PROCESS, "finding latest products in database").
		Logger()

	logger.Trace().Msg("finding latest products in database")
	products, err := svc.queries.FindLatestProducts(c, LatestLimit)
	if err != nil {
		err = fmt.Errorf("failed finding latest products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(constants.KEY_PRODUCTS, len(products)).Msg("found latest products in database")

	return responses(products), nil
}

// FindRelatedProducts returns products sharing the category of productID, never productID itself.
func (svc *ProductService) FindRelatedProducts(
	c context.Context,
	productID uuid.UUID,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindRelatedProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService FindRelatedProducts").
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	product, err := svc.queries.FindProductById(c, productID)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", notFound(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("found product in database")

	logger = logger.With().Str(constants.KEY_PROCESS, "finding related products in database").Logger()
	logger.Trace().Msg("finding related products in database")
	products, err := svc.queries.FindRelatedProducts(c, repository.FindRelatedProductsParams{
		Category: product.Category,
		ID:       product.ID,
		Limit:    RelatedLimit,
	})
	if err != nil {
		err = fmt.Errorf("failed finding related products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(constants.KEY_PRODUCTS, len(products)).Msg("found related products in database")

	return responses(products), nil
}

func (svc *ProductService) FindCategories(c context.Context) ([]string, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService FindCategories").
		Logger()

	categories, err := svc.queries.FindProductCategories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return categories, nil
}

// SearchProducts matches names case-insensitively; the All category does not filter.
func (svc *ProductService) SearchProducts(
	c context.Context,
	param request.SearchProduct,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService SearchProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService SearchProducts").
		Str(constants.KEY_PROCESS, "searching products in database").
		Str("search", param.Search).
		Str("category", param.Category).
		Logger()

	category := param.Category
	if category == request.CategoryAll {
		category = ""
	}

	logger.Trace().Msg("searching products in database")
	products, err := svc.queries.SearchProducts(c, repository.SearchProductsParams{
		Search:   param.Search,
		Category: category,
	})
	if err != nil {
		err = fmt.Errorf("failed searching products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(constants.KEY_PRODUCTS, len(products)).Msg("searched products in database")

	return responses(products), nil
}

// FindProductById reads through the cache. Cache failures fall back to the database.
func (svc *ProductService) FindProductById(c context.Context, id uuid.UUID) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService FindProductById").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Str(constants.KEY_CACHE_KEY, cache.Key(id)).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	cached, err := svc.cache.Get(c, id)
	if err == nil {
		span.AddEvent("found product in cache")
		logger.Trace().Msg("found product in cache")
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	product, err := svc.queries.FindProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", notFound(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Trace().Msg("found product in database")

	res := product.Response()
	logger = logger.With().Str(constants.KEY_PROCESS, "inserting product to cache").Logger()
	if err = svc.cache.Set(c, res); err != nil {
		logger.Warn().Err(err).Msg(err.Error())
	}
	return res, nil
}

// FindProductImage returns the stored image or the default one when the product has none.
func (svc *ProductService) FindProductImage(c context.Context, id uuid.UUID) ([]byte, string, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductImage")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService FindProductImage").
		Str(constants.KEY_PROCESS, "finding product image in database").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Logger()

	image, err := svc.queries.FindProductImage(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding product image with error=%w", notFound(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, "", err
	}
	if len(image.ImageData) == 0 {
		logger.Trace().Msg("product has no image, using default")
		return assets.DefaultImage, assets.DefaultImageContentType, nil
	}
	return image.ImageData, image.ImageContentType, nil
}

// UpdateProduct applies the set fields of param and replaces the image when one is given.
func (svc *ProductService) UpdateProduct(
	c context.Context,
	shopID uuid.UUID,
	productID uuid.UUID,
	param request.UpdateProduct,
) (res response.Product, err error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService UpdateProduct").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "beginning transaction").Logger()
	tx, err := svc.pool.Begin(c)
	if err != nil {
		err = fmt.Errorf("failed beginning transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	queries := svc.queries.WithTx(tx)

	logger = logger.With().Str(constants.KEY_PROCESS, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	current, err := queries.FindProductById(c, productID)
	if err == nil && current.ShopID != shopID {
		err = pgx.ErrNoRows
	}
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", notFound(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	arg := repository.UpdateProductParams{
		ID:          current.ID,
		ShopID:      current.ShopID,
		Name:        current.Name,
		Description: current.Description,
		Category:    current.Category,
		Price:       current.Price,
		Quantity:    current.Quantity,
	}
	if param.Name != nil {
		arg.Name = *param.Name
	}
	if param.Description != nil {
		arg.Description = *param.Description
	}
	if param.Category != nil {
		arg.Category = *param.Category
	}
	if param.Price != nil {
		arg.Price = repository.NumericFromDecimal(*param.Price)
	}
	if param.Quantity != nil {
		arg.Quantity = *param.Quantity
	}

	if param.Image != nil {
		logger = logger.With().Str(constants.KEY_PROCESS, "updating product image").Logger()
		logger.Trace().Msg("updating product image")
		err = queries.UpdateProductImage(c, repository.UpdateProductImageParams{
			ID:               productID,
			ShopID:           shopID,
			ImageData:        param.Image.Data,
			ImageContentType: param.Image.ContentType,
		})
		if err != nil {
			err = fmt.Errorf("failed updating product image with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		logger.Trace().Msg("updated product image")
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "updating product in database").Logger()
	logger.Trace().Msg("updating product in database")
	product, err := queries.UpdateProduct(c, arg)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", notFound(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product in database")

	svc.evict(c, productID)
	return product.Response(), nil
}

func (svc *ProductService) DeleteProduct(c context.Context, shopID uuid.UUID, productID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductService DeleteProduct").
		Str(constants.KEY_PROCESS, "removing product in database").
		Str(constants.KEY_SHOP_ID, shopID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Logger()

	logger.Trace().Msg("removing product in database")
	_, err := svc.queries.DeleteProduct(c, repository.DeleteProductParams{ID: productID, ShopID: shopID})
	if err != nil {
		err = fmt.Errorf("failed removing product with error=%w", notFound(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("removed product in database")

	svc.evict(c, productID)
	return nil
}

func (svc *ProductService) evict(c context.Context, productID uuid.UUID) {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_PROCESS, "removing product in cache").
		Str(constants.KEY_CACHE_KEY, cache.Key(productID)).
		Logger()
	if err := svc.cache.Delete(c, productID); err != nil {
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("removed product in cache")
}
