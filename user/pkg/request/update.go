package request

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
)

// UpdateUser is the body of PUT /api/users/{userId}; nil fields keep their stored value.
type UpdateUser struct {
	Username *string `validate:"omitempty,min=1,max=255" json:"username,omitempty"`
	Email    *string `validate:"omitempty,email"         json:"email,omitempty"`
	Password *string `validate:"omitempty,min=6,max=72"  json:"password,omitempty"`
	Seller   *bool   `validate:"omitempty"               json:"seller,omitempty"`
}

func (u UpdateUser) MarshalZerologObject(e *zerolog.Event) {
	if u.Username != nil {
		e.Str("username", *u.Username)
	}
	if u.Email != nil {
		e.Str(constants.KEY_EMAIL, *u.Email)
	}
	if u.Password != nil {
		e.Str("password", maskedPassword)
	}
	if u.Seller != nil {
		e.Bool("seller", *u.Seller)
	}
}

func (u UpdateUser) MarshalJSON() ([]byte, error) {
	if u.Password != nil {
		masked := maskedPassword
		u.Password = &masked
	}
	type U UpdateUser
	return json.Marshal(U(u))
}
