package treatment

import (
	"time"
)

// Treatment maps to the treatments table. The appointment, patient, dentist
// and office fields are filled by joined reads.
type Treatment struct {
	ID            int64     `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"tenant_id"`
	AppointmentID int64     `db:"appointment_id" json:"appointment_id"`
	Description   string    `db:"description" json:"description"`
	Cost          float64   `db:"cost" json:"cost"`
	Completed     bool      `db:"completed" json:"completed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	AppointmentTime   *time.Time `json:"appointment_time,omitempty"`
	AppointmentStatus *string    `json:"appointment_status,omitempty"`
	PatientName       *string    `json:"patient_name,omitempty"`
	PatientLastName   *string    `json:"patient_last_name,omitempty"`
	PatientPhone      *string    `json:"patient_phone,omitempty"`
	DentistName       *string    `json:"dentist_name,omitempty"`
	OfficeName        *string    `json:"office_name,omitempty"`
}

type TreatmentInput struct {
	AppointmentID *int64   `json:"appointment_id" validate:"omitempty,gt=0"`
	Description   *string  `json:"description" validate:"omitempty,min=1"`
	Cost          *float64 `json:"cost" validate:"omitempty,gte=0"`
	Completed     *bool    `json:"completed"`
}

// AppointmentRef is the appointment echoed by the per-appointment listing.
type AppointmentRef struct {
	ID              int64     `json:"id"`
	AppointmentTime time.Time `json:"appointment_time"`
	Status          string    `json:"status"`
	PatientName     string    `json:"patient_name"`
	PatientLastName string    `json:"patient_last_name"`
	DentistName     string    `json:"dentist_name"`
	OfficeName      string    `json:"office_name"`
}

type PatientRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

type Stats struct {
	Total            int64   `json:"total_treatments"`
	Completed        int64   `json:"completed_treatments"`
	Pending          int64   `json:"pending_treatments"`
	TotalRevenue     float64 `json:"total_revenue"`
	AverageCost      float64 `json:"average_cost"`
	CompletedRevenue float64 `json:"completed_revenue"`
}
