package authclient

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Credentials is the payload for a direct (non-federated) login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate enforces the shape of the payload before it reaches the wire, so
// a login form gets a field-level verdict without a round trip.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(1, 256)),
	)
}
