package authclient

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// Account is the minimal identity record the client holds for the current
// session. A denormalized copy survives reloads in the credential store.
type Account struct {
	ID    uuid.UUID `json:"id,omitempty"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
	Role  Role      `json:"role,omitempty"`
}

// Complete reports whether the record carries every field a restored session
// needs. Incomplete cached snapshots force a fresh profile fetch.
func (a *Account) Complete() bool {
	return a != nil && a.ID != uuid.Nil && a.Role.IsValid()
}

// Validate checks the fields a transport response must populate.
func (a Account) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.By(requiredUUID)),
		validation.Field(&a.Role, validation.Required, validation.By(validRole)),
	)
}

func requiredUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return fmt.Errorf("must be a non-nil uuid")
	}
	return nil
}

func validRole(value any) error {
	role, ok := value.(Role)
	if !ok || !role.IsValid() {
		return fmt.Errorf("must be one of %v", AllRoles())
	}
	return nil
}

func cloneAccount(a *Account) *Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
