package clinical

import (
	"time"
)

// History maps to the clinical_history table.
type History struct {
	ID              int64     `db:"id" json:"id"`
	TenantID        string    `db:"tenant_id" json:"tenant_id"`
	PatientID       int64     `db:"patient_id" json:"patient_id"`
	Observation     string    `db:"observation" json:"observation"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
	PatientName     *string   `json:"patient_name,omitempty"`
	PatientLastName *string   `json:"patient_last_name,omitempty"`

	Attachments []*Attachment `json:"attachments,omitempty"`
}

type HistoryInput struct {
	PatientID   *int64  `json:"patient_id" validate:"omitempty,gt=0"`
	Observation *string `json:"observation" validate:"omitempty,min=1"`
}

// Attachment is a file stored inline as base64. Listings leave
// Base64Content empty.
type Attachment struct {
	ID                int64     `db:"id" json:"id"`
	TenantID          string    `db:"tenant_id" json:"tenant_id"`
	ClinicalHistoryID int64     `db:"clinical_history_id" json:"clinical_history_id"`
	Filename          string    `db:"filename" json:"filename"`
	MimeType          *string   `db:"mime_type" json:"mime_type,omitempty"`
	Base64Content     string    `db:"base64_content" json:"base64_content,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type AttachmentInput struct {
	Filename      *string `json:"filename" validate:"omitempty,min=1,max=255"`
	MimeType      *string `json:"mime_type" validate:"omitempty,max=100"`
	Base64Content *string `json:"base64_content" validate:"omitempty,base64"`
}

type PatientRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}
