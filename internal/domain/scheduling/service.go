package scheduling

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

// slotConstraint is the partial unique index guarding a dentist's slot.
const slotConstraint = "appointments_dentist_slot_key"

const (
	msgNotFound = "appointment not found"
	msgConflict = "dentist already has an appointment at that time"
)

type Service struct {
	appointments AppointmentRepository
	refs         References
	validate     *validator.Validate
}

func NewService(appointments AppointmentRepository, refs References, v *validator.Validate) *Service {
	return &Service{appointments: appointments, refs: refs, validate: v}
}

// PatientAppointments is the body of the per-patient listing.
type PatientAppointments struct {
	Patient      *PatientRef    `json:"patient"`
	Appointments []*Appointment `json:"appointments"`
}

// DentistAppointments is the body of the per-dentist listing.
type DentistAppointments struct {
	Dentist      *DentistRef    `json:"dentist"`
	Appointments []*Appointment `json:"appointments"`
}

func (s *Service) CreateAppointment(ctx context.Context, in *AppointmentInput) (*Appointment, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.PatientID == nil || in.DentistID == nil || in.OfficeID == nil || in.AppointmentTime == nil {
		return nil, apperr.BadRequest("patient_id, dentist_id, office_id and appointment_time are required")
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	conflict, err := s.appointments.HasPendingConflict(ctx, *in.DentistID, *in.AppointmentTime, 0)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error checking schedule")
	}
	if conflict {
		return nil, apperr.Conflict(msgConflict)
	}

	a := &Appointment{
		PatientID:       *in.PatientID,
		DentistID:       *in.DentistID,
		OfficeID:        *in.OfficeID,
		AppointmentTime: *in.AppointmentTime,
		Status:          StatusPending,
		Reason:          in.Reason,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		if db.IsUniqueViolation(err, slotConstraint) {
			return nil, apperr.Conflict(msgConflict)
		}
		return nil, db.Classify(err, msgNotFound, "error creating appointment")
	}
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error fetching appointment")
	}
	return a, nil
}

func (s *Service) ListAppointments(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.appointments.List(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, msgNotFound, "error listing appointments")
	}
	return items, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) (*PatientAppointments, error) {
	p, err := s.refs.Patient(ctx, patientID)
	if err != nil {
		return nil, db.Classify(err, "patient not found", "error fetching patient")
	}
	items, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error listing patient appointments")
	}
	return &PatientAppointments{Patient: p, Appointments: items}, nil
}

// ListByDentist accepts date_from and date_to as optional bounds.
func (s *Service) ListByDentist(ctx context.Context, dentistID int64, params map[string]string) (*DentistAppointments, error) {
	d, err := s.refs.Dentist(ctx, dentistID)
	if err != nil {
		return nil, db.Classify(err, "dentist not found", "error fetching dentist")
	}
	items, err := s.appointments.ListByDentist(ctx, dentistID, params)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error listing dentist appointments")
	}
	return &DentistAppointments{Dentist: d, Appointments: items}, nil
}

// UpdateAppointment writes the fields present in in. Moving the appointment
// to another dentist or time re-runs the conflict check against the merged
// values, excluding the appointment itself.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, in *AppointmentInput) (*Appointment, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error fetching appointment")
	}
	patch := appointmentPatch(in)
	if patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}

	fields := patch.Fields()
	newDentist, movesDentist := fields["dentist_id"].(int64)
	newTime, movesTime := fields["appointment_time"].(time.Time)
	if movesDentist || movesTime {
		dentistID, at := current.DentistID, current.AppointmentTime
		if movesDentist {
			dentistID = newDentist
		}
		if movesTime {
			at = newTime
		}
		conflict, err := s.appointments.HasPendingConflict(ctx, dentistID, at, id)
		if err != nil {
			return nil, db.Classify(err, msgNotFound, "error checking schedule")
		}
		if conflict {
			return nil, apperr.Conflict(msgConflict)
		}
	}
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	if err := s.appointments.Update(ctx, id, patch); err != nil {
		if db.IsUniqueViolation(err, slotConstraint) {
			return nil, apperr.Conflict(msgConflict)
		}
		return nil, db.Classify(err, msgNotFound, "error updating appointment")
	}
	return s.GetAppointment(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return db.Classify(err, msgNotFound, "error fetching appointment")
	}
	if a.Status == StatusCompleted {
		return apperr.BadRequest("cannot delete a completed appointment")
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return db.Classify(err, msgNotFound, "error deleting appointment")
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, params map[string]string) (*Stats, error) {
	st, err := s.appointments.Stats(ctx, params)
	if err != nil {
		return nil, db.Classify(err, msgNotFound, "error computing appointment stats")
	}
	return st, nil
}

// checkReferences verifies every reference set in in belongs to the tenant.
func (s *Service) checkReferences(ctx context.Context, in *AppointmentInput) error {
	if in.PatientID != nil {
		if _, err := s.refs.Patient(ctx, *in.PatientID); err != nil {
			return db.Classify(err, "patient not found", "error checking patient")
		}
	}
	if in.DentistID != nil {
		if _, err := s.refs.Dentist(ctx, *in.DentistID); err != nil {
			return db.Classify(err, "dentist not found", "error checking dentist")
		}
	}
	if in.OfficeID != nil {
		if err := s.refs.Office(ctx, *in.OfficeID); err != nil {
			return db.Classify(err, "office not found", "error checking office")
		}
	}
	return nil
}

func appointmentPatch(in *AppointmentInput) *db.Patch {
	p := &db.Patch{}
	if in.PatientID != nil {
		p.Set("patient_id", *in.PatientID)
	}
	if in.DentistID != nil {
		p.Set("dentist_id", *in.DentistID)
	}
	if in.OfficeID != nil {
		p.Set("office_id", *in.OfficeID)
	}
	if in.AppointmentTime != nil {
		p.Set("appointment_time", *in.AppointmentTime)
	}
	if in.Status != nil {
		p.Set("status", *in.Status)
	}
	if in.Reason != nil {
		p.Set("reason", *in.Reason)
	}
	return p
}
