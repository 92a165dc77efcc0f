package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/token"
)

// Auth rejects requests without a valid bearer token and attaches the parsed token to the
// request context.
func Auth(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Auth")
			defer span.End()

			logger := zerolog.Ctx(c).
				With().
				Str(constants.KEY_TAG, "middleware Auth").
				Str(constants.KEY_PROCESS, "verifying authorization").
				Logger()
			c = logger.WithContext(c)

			authorization := r.Header.Get(inHttp.KEY_HEADER_AUTHORIZATION)
			if len(authorization) <= len(inHttp.VALUE_BEARER_PREFIX) ||
				!strings.EqualFold(authorization[:len(inHttp.VALUE_BEARER_PREFIX)], inHttp.VALUE_BEARER_PREFIX) {
				err := inErrors.ErrEmptyAuth
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteFailedResponse(c, w, http.StatusUnauthorized, err.Error())
				return
			}

			jwtToken, err := token.Verify(c, secretKey, authorization[len(inHttp.VALUE_BEARER_PREFIX):])
			if err != nil {
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteFailedResponse(c, w, http.StatusUnauthorized, inErrors.ErrTokenInvalid.Error())
				return
			}
			logger.Trace().Msg("verified authorization")

			c = token.AttachJwtToken(r.Context(), jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
