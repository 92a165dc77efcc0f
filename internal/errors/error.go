package errors

import (
	"errors"
)

// Shared sentinels; StatusFromError in internal/http maps them onto status codes.
var (
	ErrEmptyAuth    = errors.New("missing authorization")
	ErrEmptySubject = errors.New("missing subject")
	ErrTokenInvalid = errors.New("invalid token")
	ErrForbidden    = errors.New("user is not authorized to access this resource")
	ErrNotOwner     = errors.New("user is not the owner of this shop")
	ErrNotFound     = errors.New("resource not found")
)
