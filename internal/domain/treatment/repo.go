package treatment

import (
	"context"

	"github.com/dentix/dentix/internal/platform/db"
)

type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id int64) (*Treatment, error)
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Treatment, int, error)
	ListByAppointment(ctx context.Context, appointmentID int64) ([]*Treatment, error)
	// ListByPatient accepts completed, date_from and date_to.
	ListByPatient(ctx context.Context, patientID int64, params map[string]string) ([]*Treatment, error)
	Update(ctx context.Context, id int64, patch *db.Patch) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, params map[string]string) (*Stats, error)
}

// References resolves appointments and patients within the tenant. Missing
// rows are pgx.ErrNoRows.
type References interface {
	Appointment(ctx context.Context, id int64) (*AppointmentRef, error)
	Patient(ctx context.Context, id int64) (*PatientRef, error)
}
