package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/token"
)

// IsSelf only lets a request through when the {userId} path variable is the token subject.
// It must run after Auth.
func IsSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "middleware IsSelf")
		defer span.End()

		logger := zerolog.Ctx(c).
			With().
			Str(constants.KEY_TAG, "middleware IsSelf").
			Logger()
		c = logger.WithContext(c)

		userID, err := inHttp.PathUUID(r, "userId")
		if err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
			return
		}
		subject, err := token.UserIdFromContext(c)
		if err != nil {
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteFailedResponse(c, w, http.StatusUnauthorized, err.Error())
			return
		}
		if subject != userID {
			err = fmt.Errorf("userId=%s is not token subject with error=%w", userID, inErrors.ErrForbidden)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteFailedResponse(c, w, http.StatusForbidden, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(c))
	})
}
