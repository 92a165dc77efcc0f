package request

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
)

const maskedPassword = "***"

// LoginRequest is the body of POST /auth/signin. The password never reaches logs or json output.
type LoginRequest struct {
	Email    string `validate:"required,email,max=255" json:"email"`
	Password string `validate:"required,max=72"        json:"password"`
}

func (l LoginRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str(constants.KEY_EMAIL, l.Email).Str("password", maskedPassword)
}

func (l LoginRequest) MarshalJSON() ([]byte, error) {
	l.Password = maskedPassword
	type L LoginRequest
	return json.Marshal(L(l))
}
