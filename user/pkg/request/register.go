package request

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
)

type Register struct {
	Username string `validate:"required,max=255" json:"username"`
	Email    string `validate:"required,email"   json:"email"`
	Password string `validate:"required,min=6,max=72" json:"password"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str(constants.KEY_EMAIL, r.Email).Str("username", r.Username).Str("password", maskedPassword)
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = maskedPassword
	type R Register
	return json.Marshal(R(r))
}
