package identity

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

type Service struct {
	patients PatientRepository
	validate *validator.Validate
}

func NewService(patients PatientRepository, v *validator.Validate) *Service {
	return &Service{patients: patients, validate: v}
}

func (s *Service) CreatePatient(ctx context.Context, in *PatientInput) (*Patient, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Name == nil || *in.Name == "" || in.LastName == nil || *in.LastName == "" {
		return nil, apperr.BadRequest("name and last_name are required")
	}

	p := &Patient{
		DocumentTypeID:  in.DocumentTypeID,
		DocumentID:      in.DocumentID,
		Name:            *in.Name,
		LastName:        *in.LastName,
		Phone:           in.Phone,
		Address:         in.Address,
		Email:           in.Email,
		BirthDate:       in.BirthDate,
		Gender:          in.Gender,
		MaritalStatusID: in.MaritalStatusID,
		BloodTypeID:     in.BloodTypeID,
		Occupation:      in.Occupation,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, db.Classify(err, "patient not found", "error creating patient")
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, "patient not found", "error fetching patient")
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	patients, total, err := s.patients.List(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, "patient not found", "error listing patients")
	}
	return patients, total, nil
}

// UpdatePatient writes only the fields present in in.
func (s *Service) UpdatePatient(ctx context.Context, id int64, in *PatientInput) (*Patient, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	patch := patientPatch(in)
	if patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}
	p, err := s.patients.Update(ctx, id, patch)
	if err != nil {
		return nil, db.Classify(err, "patient not found", "error updating patient")
	}
	return p, nil
}

// DeletePatient marks the patient inactive. The row is kept.
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	if err := s.patients.SoftDelete(ctx, id); err != nil {
		return db.Classify(err, "patient not found", "error deleting patient")
	}
	return nil
}

func patientPatch(in *PatientInput) *db.Patch {
	patch := &db.Patch{}
	if in.DocumentTypeID != nil {
		patch.Set("document_type_id", *in.DocumentTypeID)
	}
	if in.DocumentID != nil {
		patch.Set("document_id", *in.DocumentID)
	}
	if in.Name != nil {
		patch.Set("name", *in.Name)
	}
	if in.LastName != nil {
		patch.Set("last_name", *in.LastName)
	}
	if in.Phone != nil {
		patch.Set("phone", *in.Phone)
	}
	if in.Address != nil {
		patch.Set("address", *in.Address)
	}
	if in.Email != nil {
		patch.Set("email", *in.Email)
	}
	if in.BirthDate != nil {
		patch.Set("birth_date", *in.BirthDate)
	}
	if in.Gender != nil {
		patch.Set("gender", *in.Gender)
	}
	if in.MaritalStatusID != nil {
		patch.Set("marital_status_id", *in.MaritalStatusID)
	}
	if in.BloodTypeID != nil {
		patch.Set("blood_type_id", *in.BloodTypeID)
	}
	if in.Occupation != nil {
		patch.Set("occupation", *in.Occupation)
	}
	return patch
}
