package scheduling

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointments table. The name fields are filled by
// joined reads only.
type Appointment struct {
	ID              int64     `db:"id" json:"id"`
	TenantID        string    `db:"tenant_id" json:"tenant_id"`
	PatientID       int64     `db:"patient_id" json:"patient_id"`
	DentistID       int64     `db:"dentist_id" json:"dentist_id"`
	OfficeID        int64     `db:"office_id" json:"office_id"`
	AppointmentTime time.Time `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	PatientName     *string `json:"patient_name,omitempty"`
	PatientLastName *string `json:"patient_last_name,omitempty"`
	PatientPhone    *string `json:"patient_phone,omitempty"`
	PatientEmail    *string `json:"patient_email,omitempty"`
	DentistName     *string `json:"dentist_name,omitempty"`
	OfficeName      *string `json:"office_name,omitempty"`
}

type AppointmentInput struct {
	PatientID       *int64     `json:"patient_id" validate:"omitempty,gt=0"`
	DentistID       *int64     `json:"dentist_id" validate:"omitempty,gt=0"`
	OfficeID        *int64     `json:"office_id" validate:"omitempty,gt=0"`
	AppointmentTime *time.Time `json:"appointment_time"`
	Status          *string    `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Reason          *string    `json:"reason" validate:"omitempty,max=500"`
}

// PatientRef and DentistRef are the owners echoed by the per-patient and
// per-dentist listings.
type PatientRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

type DentistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Stats struct {
	Total     int64 `json:"total_appointments"`
	Pending   int64 `json:"pending_appointments"`
	Completed int64 `json:"completed_appointments"`
	Cancelled int64 `json:"cancelled_appointments"`
	Today     int64 `json:"today_appointments"`
	Tomorrow  int64 `json:"tomorrow_appointments"`
}
