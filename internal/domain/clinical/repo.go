package clinical

import (
	"context"

	"github.com/dentix/dentix/internal/platform/db"
)

type HistoryRepository interface {
	Create(ctx context.Context, h *History) error
	GetByID(ctx context.Context, id int64) (*History, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*History, int, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*History, error)
	Update(ctx context.Context, id int64, patch *db.Patch) error
	Delete(ctx context.Context, id int64) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *Attachment) error
	GetByID(ctx context.Context, id int64) (*Attachment, error)
	// List returns metadata only. historyID 0 lists every attachment.
	List(ctx context.Context, historyID int64, limit, offset int) ([]*Attachment, int, error)
	Update(ctx context.Context, id int64, patch *db.Patch) (*Attachment, error)
	Delete(ctx context.Context, id int64) error
}

// PatientLookup resolves active patients within the tenant.
type PatientLookup interface {
	Patient(ctx context.Context, id int64) (*PatientRef, error)
}
