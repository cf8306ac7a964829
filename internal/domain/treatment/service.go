package treatment

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

const msgNotFound = "treatment not found"

type Service struct {
	treatments TreatmentRepository
	refs       References
	validate   *validator.Validate
}

func NewService(treatments TreatmentRepository, refs References, v *validator.Validate) *Service {
	return &Service{treatments: treatments, refs: refs, validate: v}
}

type AppointmentTreatments struct {
	Appointment *AppointmentRef `json:"appointment"`
	Treatments  []*Treatment    `json:"treatments"`
}

type PatientTreatments struct {
	Patient    *PatientRef  `json:"patient"`
	Treatments []*Treatment `json:"treatments"`
}

func (s *Service) CreateTreatment(ctx context.Context, in *TreatmentInput) (*Treatment, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.AppointmentID == nil || in.Description == nil {
		return nil, apperr.BadRequest("appointment_id and description are required")
	}
	if _, err := s.refs.Appointment(ctx, *in.AppointmentID); err != nil {
		return nil, db.Classify(err, "appointment not found", "error checking appointment")
	}

	t := &Treatment{AppointmentID: *in.AppointmentID, Description: *in.Description}
	if in.Cost != nil {
		t.Cost = *in.Cost
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if err := s.treatments.Create(ctx, t); err != nil {
		return nil, db.Classify(err, msgNotFound, "error creating treatment")
	}
	return t, nil
}

func (s *Service) GetTreatment(ctx context.Context, id int64) (*Treatment, error) {
	t, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error fetching treatment")
	}
	return t, nil
}

func (s *Service) ListTreatments(ctx context.Context, params map[string]string, limit, offset int) ([]*Treatment, int, error) {
	items, total, err := s.treatments.List(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, msgNotFound, "error listing treatments")
	}
	return items, total, nil
}

func (s *Service) ListByAppointment(ctx context.Context, appointmentID int64) (*AppointmentTreatments, error) {
	a, err := s.refs.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, db.Classify(err, "appointment not found", "error fetching appointment")
	}
	items, err := s.treatments.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error listing appointment treatments")
	}
	return &AppointmentTreatments{Appointment: a, Treatments: items}, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, params map[string]string) (*PatientTreatments, error) {
	p, err := s.refs.Patient(ctx, patientID)
	if err != nil {
		return nil, db.Classify(err, "patient not found", "error fetching patient")
	}
	items, err := s.treatments.ListByPatient(ctx, patientID, params)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error listing patient treatments")
	}
	return &PatientTreatments{Patient: p, Treatments: items}, nil
}

func (s *Service) UpdateTreatment(ctx context.Context, id int64, in *TreatmentInput) (*Treatment, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if _, err := s.treatments.GetByID(ctx, id); err != nil {
		return nil, db.Classify(err, msgNotFound, "error fetching treatment")
	}
	if in.AppointmentID != nil {
		if _, err := s.refs.Appointment(ctx, *in.AppointmentID); err != nil {
			return nil, db.Classify(err, "appointment not found", "error checking appointment")
		}
	}

	patch := &db.Patch{}
	if in.AppointmentID != nil {
		patch.Set("appointment_id", *in.AppointmentID)
	}
	if in.Description != nil {
		patch.Set("description", *in.Description)
	}
	if in.Cost != nil {
		patch.Set("cost", *in.Cost)
	}
	if in.Completed != nil {
		patch.Set("completed", *in.Completed)
	}
	if patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}

	if err := s.treatments.Update(ctx, id, patch); err != nil {
		return nil, db.Classify(err, msgNotFound, "error updating treatment")
	}
	return s.GetTreatment(ctx, id)
}

// CompleteTreatment marks a pending treatment completed. Completing it twice
// is a BadRequest.
func (s *Service) CompleteTreatment(ctx context.Context, id int64) (*Treatment, error) {
	t, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error fetching treatment")
	}
	if t.Completed {
		return nil, apperr.BadRequest("treatment is already completed")
	}
	patch := &db.Patch{}
	patch.Set("completed", true)
	patch.And("NOT completed")
	if err := s.treatments.Update(ctx, id, patch); err != nil {
		return nil, db.Classify(err, msgNotFound, "error completing treatment")
	}
	return s.GetTreatment(ctx, id)
}

func (s *Service) DeleteTreatment(ctx context.Context, id int64) error {
	if err := s.treatments.Delete(ctx, id); err != nil {
		return db.Classify(err, msgNotFound, "error deleting treatment")
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, params map[string]string) (*Stats, error) {
	st, err := s.treatments.Stats(ctx, params)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error computing treatment stats")
	}
	return st, nil
}
