package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	shopErrors "github.com/Alturino/storefront/shop/internal/errors"
	"github.com/Alturino/storefront/shop/internal/otel"
	"github.com/Alturino/storefront/shop/pkg/request"
	"github.com/Alturino/storefront/shop/pkg/response"
)

const pgForeignKeyViolation = "23503"

type Queries interface {
	InsertShop(c context.Context, arg repository.InsertShopParams) (repository.Shop, error)
	FindShopById(c context.Context, id uuid.UUID) (repository.Shop, error)
	FindShops(c context.Context) ([]repository.Shop, error)
	FindShopsByOwnerId(c context.Context, ownerID uuid.UUID) ([]repository.Shop, error)
	FindUserById(c context.Context, id uuid.UUID) (repository.User, error)
}

type ShopService struct {
	queries Queries
}

func NewShopService(queries Queries) *ShopService {
	return &ShopService{queries: queries}
}

func responses(shops []repository.Shop) []response.Shop {
	res := make([]response.Shop, 0, len(shops))
	for _, shop := range shops {
		res = append(res, shop.Response())
	}
	return res
}

func (svc *ShopService) InsertShop(
	c context.Context,
	ownerID uuid.UUID,
	param request.InsertShop,
) (response.Shop, error) {
	c, span := otel.Tracer.Start(c, "ShopService InsertShop")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopService InsertShop").
		Str(constants.KEY_USER_ID, ownerID.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "checking seller").Logger()
	logger.Trace().Msg("checking seller")
	owner, err := svc.queries.FindUserById(c, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: %w", shopErrors.ErrOwnerNotFound, err)
		}
		err = fmt.Errorf("failed finding shop owner with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Shop{}, err
	}
	if !owner.Seller {
		err = shopErrors.ErrNotSeller
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Shop{}, err
	}
	logger.Trace().Msg("checked seller")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting shop to database").Logger()
	logger.Trace().Msg("inserting shop to database")
	shop, err := svc.queries.InsertShop(c, repository.InsertShopParams{
		OwnerID:     ownerID,
		Name:        param.Name,
		Description: param.Description,
	})
	if err != nil {
		pgErr := &pgconn.PgError{}
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			err = fmt.Errorf("%w: %w", shopErrors.ErrOwnerNotFound, err)
		}
		err = fmt.Errorf("failed inserting shop with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Shop{}, err
	}
	logger.Info().Str(constants.KEY_SHOP_ID, shop.ID.String()).Msg("inserted shop to database")

	return shop.Response(), nil
}

func (svc *ShopService) FindShops(c context.Context) ([]response.Shop, error) {
	c, span := otel.Tracer.Start(c, "ShopService FindShops")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopService FindShops").
		Logger()

	shops, err := svc.queries.FindShops(c)
	if err != nil {
		err = fmt.Errorf("failed finding shops with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return responses(shops), nil
}

func (svc *ShopService) FindShopsByOwnerId(c context.Context, ownerID uuid.UUID) ([]response.Shop, error) {
	c, span := otel.Tracer.Start(c, "ShopService FindShopsByOwnerId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopService FindShopsByOwnerId").
		Str(constants.KEY_USER_ID, ownerID.String()).
		Logger()

	shops, err := svc.queries.FindShopsByOwnerId(c, ownerID)
	if err != nil {
		err = fmt.Errorf("failed finding shops with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return responses(shops), nil
}

func (svc *ShopService) FindShopById(c context.Context, id uuid.UUID) (response.Shop, error) {
	c, span := otel.Tracer.Start(c, "ShopService FindShopById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ShopService FindShopById").
		Str(constants.KEY_SHOP_ID, id.String()).
		Logger()

	shop, err := svc.queries.FindShopById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: %w", shopErrors.ErrShopNotFound, err)
		}
		err = fmt.Errorf("failed finding shop with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Shop{}, err
	}
	return shop.Response(), nil
}

// FindShopOwner backs the ownership check of the product and order routes.
func (svc *ShopService) FindShopOwner(c context.Context, shopID uuid.UUID) (uuid.UUID, error) {
	shop, err := svc.FindShopById(c, shopID)
	if err != nil {
		return uuid.Nil, err
	}
	return shop.OwnerID, nil
}
