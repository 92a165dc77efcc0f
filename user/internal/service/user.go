package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/internal/token"
	userErrors "github.com/Alturino/storefront/user/internal/errors"
	"github.com/Alturino/storefront/user/internal/otel"
	"github.com/Alturino/storefront/user/pkg/request"
	"github.com/Alturino/storefront/user/pkg/response"
)

const pgUniqueViolation = "23505"

type Queries interface {
	InsertUser(c context.Context, arg repository.InsertUserParams) (repository.User, error)
	FindUserByEmail(c context.Context, email string) (repository.User, error)
	FindUserById(c context.Context, id uuid.UUID) (repository.User, error)
	UpdateUser(c context.Context, arg repository.UpdateUserParams) (repository.User, error)
}

type UserService struct {
	queries   Queries
	secretKey string
	now       func() time.Time
}

func NewUserService(queries Queries, secretKey string) *UserService {
	return &UserService{queries: queries, secretKey: secretKey, now: time.Now}
}

func (u *UserService) Register(c context.Context, param request.Register) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserService Register").
		Str(constants.KEY_EMAIL, param.Email).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "hashing password").Logger()
	logger.Trace().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Msg("hashed password")

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting user").Logger()
	logger.Trace().Msg("inserting user")
	user, err := u.queries.InsertUser(c, repository.InsertUserParams{
		Username: param.Username,
		Email:    param.Email,
		Password: string(hashed),
	})
	if err != nil {
		pgErr := &pgconn.PgError{}
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			err = fmt.Errorf("%w: %w", userErrors.ErrEmailExist, err)
		}
		err = fmt.Errorf("failed inserting user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str(constants.KEY_USER_ID, user.ID.String()).Msg("inserted user")

	return user.Response(), nil
}

// Login checks the password against the stored bcrypt hash and signs a token for the user.
func (u *UserService) Login(c context.Context, param request.LoginRequest) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserService Login").
		Str(constants.KEY_EMAIL, param.Email).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "finding user").Logger()
	logger.Trace().Msg("finding user by email")
	user, err := u.queries.FindUserByEmail(c, param.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: %w", userErrors.ErrUserNotFound, err)
		}
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Trace().Msg("found user by email")

	logger = logger.With().Str(constants.KEY_PROCESS, "verifying password").Logger()
	logger.Trace().Msg("verifying password")
	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password)); err != nil {
		err = fmt.Errorf("failed verifying password with error=%w", userErrors.ErrPasswordMismatch)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Trace().Msg("verified password")

	logger = logger.With().Str(constants.KEY_PROCESS, "signing token").Logger()
	logger.Trace().Msg("signing token")
	signed, err := token.Sign(u.secretKey, user.ID, u.now())
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Str(constants.KEY_USER_ID, user.ID.String()).Msg("signed token")

	return response.Login{Token: signed, User: user.Response()}, nil
}

func (u *UserService) FindUserById(c context.Context, id uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserService FindUserById").
		Str(constants.KEY_USER_ID, id.String()).
		Str(constants.KEY_PROCESS, "finding user").
		Logger()

	logger.Trace().Msg("finding user by id")
	user, err := u.queries.FindUserById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: %w", userErrors.ErrUserNotFound, err)
		}
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Msg("found user by id")

	return user.Response(), nil
}

// UpdateUser merges the non-nil fields of param into the stored user; a new password is rehashed.
func (u *UserService) UpdateUser(c context.Context, id uuid.UUID, param request.UpdateUser) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService UpdateUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserService UpdateUser").
		Str(constants.KEY_USER_ID, id.String()).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "finding user").Logger()
	logger.Trace().Msg("finding user by id")
	user, err := u.queries.FindUserById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: %w", userErrors.ErrUserNotFound, err)
		}
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Msg("found user by id")

	arg := repository.UpdateUserParams{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Password: user.Password,
		Seller:   user.Seller,
	}
	if param.Username != nil {
		arg.Username = *param.Username
	}
	if param.Email != nil {
		arg.Email = *param.Email
	}
	if param.Seller != nil {
		arg.Seller = *param.Seller
	}
	if param.Password != nil {
		logger = logger.With().Str(constants.KEY_PROCESS, "hashing password").Logger()
		logger.Trace().Msg("hashing password")
		hashed, err := bcrypt.GenerateFromPassword([]byte(*param.Password), bcrypt.DefaultCost)
		if err != nil {
			err = fmt.Errorf("failed hashing password with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.User{}, err
		}
		arg.Password = string(hashed)
		logger.Trace().Msg("hashed password")
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "updating user").Logger()
	logger.Trace().Msg("updating user")
	updated, err := u.queries.UpdateUser(c, arg)
	if err != nil {
		pgErr := &pgconn.PgError{}
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
			err = fmt.Errorf("%w: %w", userErrors.ErrEmailExist, err)
		case errors.Is(err, pgx.ErrNoRows):
			err = fmt.Errorf("%w: %w", userErrors.ErrUserNotFound, err)
		}
		err = fmt.Errorf("failed updating user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Bool("seller", updated.Seller).Msg("updated user")

	return updated.Response(), nil
}
