package model

import (
	"time"

	"babsy-voucher-platform/internal/domain"
)

// UserType mirrors the roles supplied by the auth boundary.
type UserType string

const (
	UserTypeMember   UserType = "member"
	UserTypePartner  UserType = "partner"
	UserTypeEmployee UserType = "employee"
)

// User is the minimal account record the voucher flow needs: owners of
// vouchers, partner staff redeeming them, and notification recipients.
// Full account management lives outside this service.
type User struct {
	ID        string
	Username  string
	Email     string
	Type      UserType
	PartnerID *string // set for partner staff only
	CreatedAt time.Time
}

// NewUser creates a user record of the given type.
func NewUser(id, username, email string, userType UserType) (*User, error) {
	if username == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		Type:      userType,
		CreatedAt: time.Now(),
	}, nil
}
