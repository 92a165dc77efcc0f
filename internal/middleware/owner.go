package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/token"
)

type ShopOwnerFinder interface {
	FindShopOwner(c context.Context, shopID uuid.UUID) (uuid.UUID, error)
}

// IsOwner only lets the owner of the shop named by the {shopId} path variable through.
// It must run after Auth.
func IsOwner(finder ShopOwnerFinder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware IsOwner")
			defer span.End()

			logger := zerolog.Ctx(c).
				With().
				Str(constants.KEY_TAG, "middleware IsOwner").
				Logger()
			c = logger.WithContext(c)

			logger = logger.With().Str(constants.KEY_PROCESS, "parsing shopId").Logger()
			shopID, err := uuid.Parse(mux.Vars(r)["shopId"])
			if err != nil {
				err = fmt.Errorf("failed parsing shopId with error=%w", err)
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
				return
			}
			logger = logger.With().Str(constants.KEY_SHOP_ID, shopID.String()).Logger()

			userID, err := token.UserIdFromContext(c)
			if err != nil {
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteFailedResponse(c, w, http.StatusUnauthorized, err.Error())
				return
			}

			logger = logger.With().Str(constants.KEY_PROCESS, "finding shop owner").Logger()
			logger.Trace().Msg("finding shop owner")
			ownerID, err := finder.FindShopOwner(c, shopID)
			if err != nil {
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				statusCode := http.StatusInternalServerError
				if errors.Is(err, inErrors.ErrNotFound) {
					statusCode = http.StatusNotFound
				}
				inHttp.WriteFailedResponse(c, w, statusCode, err.Error())
				return
			}
			if ownerID != userID {
				err = inErrors.ErrNotOwner
				otel.RecordError(err, span)
				logger.Error().Err(err).Str(constants.KEY_USER_ID, userID.String()).Msg(err.Error())
				inHttp.WriteFailedResponse(c, w, http.StatusForbidden, err.Error())
				return
			}
			logger.Trace().Msg("user is shop owner")

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
