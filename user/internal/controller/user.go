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
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	userErrors "github.com/Alturino/storefront/user/internal/errors"
	"github.com/Alturino/storefront/user/internal/otel"
	"github.com/Alturino/storefront/user/pkg/request"
	"github.com/Alturino/storefront/user/pkg/response"
)

type UserService interface {
	Register(c context.Context, param request.Register) (response.User, error)
	Login(c context.Context, param request.LoginRequest) (response.Login, error)
	FindUserById(c context.Context, id uuid.UUID) (response.User, error)
	UpdateUser(c context.Context, id uuid.UUID, param request.UpdateUser) (response.User, error)
}

type UserController struct {
	service  UserService
	validate *validator.Validate
}

func AttachUserController(router *mux.Router, service UserService, secretKey string) {
	controller := UserController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	router.HandleFunc("/api/users", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/auth/signin", controller.Login).Methods(http.MethodPost)

	self := router.NewRoute().Subrouter()
	self.Use(middleware.Auth(secretKey), middleware.IsSelf)
	self.HandleFunc("/api/users/{userId}", controller.FindUserById).Methods(http.MethodGet)
	self.HandleFunc("/api/users/{userId}", controller.UpdateUser).Methods(http.MethodPut)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, userErrors.ErrEmailExist):
		return http.StatusConflict
	case errors.Is(err, userErrors.ErrUserNotFound), errors.Is(err, userErrors.ErrPasswordMismatch):
		return http.StatusUnauthorized
	default:
		return inHttp.StatusFromError(err)
	}
}

// profileStatusCode differs from statusCode in that an unknown user is a 404, not a failed sign in.
func profileStatusCode(err error) int {
	if errors.Is(err, userErrors.ErrEmailExist) {
		return http.StatusConflict
	}
	return inHttp.StatusFromError(err)
}

func (u *UserController) decode(c context.Context, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed decoding request body with error=%w", err)
	}
	if err := u.validate.StructCtx(c, dst); err != nil {
		return fmt.Errorf("failed validating request body with error=%w", err)
	}
	return nil
}

func (u *UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserController Register").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	param := request.Register{}
	if err := u.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Trace().Object(constants.KEY_BODY, param).Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "registering user").Logger()
	logger.Trace().Msg("registering user")
	c = logger.WithContext(c)
	user, err := u.service.Register(c, param)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, statusCode(err), err.Error())
		return
	}
	logger.Info().Str(constants.KEY_USER_ID, user.ID.String()).Msg("registered user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusCreated,
		"message":    "user registered",
		"data":       map[string]interface{}{"user": user},
	})
}

func (u *UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserController Login").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	param := request.LoginRequest{}
	if err := u.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Trace().Object(constants.KEY_BODY, param).Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "logging in").Logger()
	logger.Trace().Msg("logging in")
	c = logger.WithContext(c)
	login, err := u.service.Login(c, param)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		code, message := statusCode(err), err.Error()
		if code == http.StatusUnauthorized {
			message = "invalid email or password"
		}
		inHttp.WriteFailedResponse(c, w, code, message)
		return
	}
	logger.Info().Str(constants.KEY_USER_ID, login.User.ID.String()).Msg("logged in")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "signed in",
		"data":       map[string]interface{}{"token": login.Token, "user": login.User},
	})
}

func (u *UserController) FindUserById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserController FindUserById").
		Logger()

	userID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().
		Str(constants.KEY_USER_ID, userID.String()).
		Str(constants.KEY_PROCESS, "finding user").
		Logger()

	logger.Trace().Msg("finding user")
	c = logger.WithContext(c)
	user, err := u.service.FindUserById(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, profileStatusCode(err), err.Error())
		return
	}
	logger.Trace().Msg("found user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "user found",
		"data":       map[string]interface{}{"user": user},
	})
}

func (u *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController UpdateUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserController UpdateUser").
		Logger()

	userID, err := inHttp.PathUUID(r, "userId")
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Str(constants.KEY_USER_ID, userID.String()).Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	param := request.UpdateUser{}
	if err = u.decode(c, r, &param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Trace().Object(constants.KEY_BODY, param).Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "updating user").Logger()
	logger.Trace().Msg("updating user")
	c = logger.WithContext(c)
	user, err := u.service.UpdateUser(c, userID, param)
	if err != nil {
		err = fmt.Errorf("failed updating user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteFailedResponse(c, w, profileStatusCode(err), err.Error())
		return
	}
	logger.Info().Msg("updated user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.STATUS_SUCCESS,
		"statusCode": http.StatusOK,
		"message":    "user updated",
		"data":       map[string]interface{}{"user": user},
	})
}
