package repository

import (
	"context"

	"babsy-voucher-platform/internal/domain/model"
)

// UserRepository is the minimal account lookup the voucher flow needs
// (voucher owners and notification recipients).
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
}
