package admin

import (
	"context"
)

// UserRepository persists login accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// GetByEmail is not tenant scoped; login runs before a tenant is known.
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Deactivate(ctx context.Context, id int64) error
}

// ConfigRepository reads reference data.
type ConfigRepository interface {
	BloodTypes(ctx context.Context) ([]*BloodType, error)
	SpecialtyDentists(ctx context.Context) ([]*SpecialtyDentist, error)
	Offices(ctx context.Context) ([]*Office, error)
}
