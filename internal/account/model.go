package account

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "USER"
	RoleTransport Role = "TRANSPORT"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts only the exact role names stored in the database.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleTransport:
		return RoleTransport, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Address      *Address  `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Address struct {
	ID           int64  `json:"id"`
	AccountID    int64  `json:"account_id"`
	Complement   string `json:"complement"`
	Street       string `json:"street"`
	HouseNumber  string `json:"house_number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
}

// Registration is the input of account creation. Password is plaintext.
type Registration struct {
	Name     string
	Email    string
	Password string
	Address  Address
}
