package identity

import (
	"context"

	"github.com/dentix/dentix/internal/platform/db"
)

// PatientRepository reads and writes patients of the tenant carried by ctx.
// Soft-deleted patients are invisible to every method.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, id int64, patch *db.Patch) (*Patient, error)
	SoftDelete(ctx context.Context, id int64) error
}
