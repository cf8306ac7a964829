package identity

import (
	"time"
)

const (
	StatusDeleted int16 = 0
	StatusActive  int16 = 1
)

// Patient maps to the patients table. BirthDate travels as YYYY-MM-DD.
type Patient struct {
	ID              int64     `db:"id" json:"id"`
	TenantID        string    `db:"tenant_id" json:"tenant_id"`
	DocumentTypeID  *int32    `db:"document_type_id" json:"document_type_id,omitempty"`
	DocumentID      *string   `db:"document_id" json:"document_id,omitempty"`
	Name            string    `db:"name" json:"name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Phone           *string   `db:"phone" json:"phone,omitempty"`
	Address         *string   `db:"address" json:"address,omitempty"`
	Email           *string   `db:"email" json:"email,omitempty"`
	BirthDate       *string   `db:"birth_date" json:"birth_date,omitempty"`
	Gender          *string   `db:"gender" json:"gender,omitempty"`
	MaritalStatusID *int32    `db:"marital_status_id" json:"marital_status_id,omitempty"`
	BloodTypeID     *int32    `db:"blood_type_id" json:"blood_type_id,omitempty"`
	Occupation      *string   `db:"occupation" json:"occupation,omitempty"`
	Status          int16     `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// PatientInput is the body of create and update requests. On update only the
// fields present are written.
type PatientInput struct {
	DocumentTypeID  *int32  `json:"document_type_id" validate:"omitempty,gt=0"`
	DocumentID      *string `json:"document_id" validate:"omitempty,max=50"`
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	Address         *string `json:"address"`
	Email           *string `json:"email" validate:"omitempty,email"`
	BirthDate       *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender          *string `json:"gender" validate:"omitempty,max=20"`
	MaritalStatusID *int32  `json:"marital_status_id" validate:"omitempty,gt=0"`
	BloodTypeID     *int32  `json:"blood_type_id" validate:"omitempty,gt=0"`
	Occupation      *string `json:"occupation" validate:"omitempty,max=100"`
}
