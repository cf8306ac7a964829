package scheduling

import (
	"context"
	"time"

	"github.com/dentix/dentix/internal/platform/db"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error)
	ListByDentist(ctx context.Context, dentistID int64, params map[string]string) ([]*Appointment, error)
	Update(ctx context.Context, id int64, patch *db.Patch) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, params map[string]string) (*Stats, error)
	// HasPendingConflict reports whether another pending appointment holds
	// the dentist at exactly at. excludeID is skipped (0 skips nothing).
	HasPendingConflict(ctx context.Context, dentistID int64, at time.Time, excludeID int64) (bool, error)
}

// References resolves the rows an appointment points at, within the tenant.
// Missing rows are reported as pgx.ErrNoRows.
type References interface {
	Patient(ctx context.Context, id int64) (*PatientRef, error)
	Dentist(ctx context.Context, id int64) (*DentistRef, error)
	Office(ctx context.Context, id int64) error
}
