package clinical

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
	"github.com/dentix/dentix/pkg/pagination"
)

const (
	msgHistoryNotFound    = "clinical history not found"
	msgAttachmentNotFound = "attachment not found"
	msgHasAttachments     = "history has attachments"
)

type Service struct {
	histories   HistoryRepository
	attachments AttachmentRepository
	patients    PatientLookup
	validate    *validator.Validate
}

func NewService(histories HistoryRepository, attachments AttachmentRepository, patients PatientLookup, v *validator.Validate) *Service {
	return &Service{histories: histories, attachments: attachments, patients: patients, validate: v}
}

type PatientHistories struct {
	Patient           *PatientRef `json:"patient"`
	ClinicalHistories []*History  `json:"clinical_histories"`
}

// -- Clinical History --

func (s *Service) CreateHistory(ctx context.Context, in *HistoryInput) (*History, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.PatientID == nil || in.Observation == nil {
		return nil, apperr.BadRequest("patient_id and observation are required")
	}
	p, err := s.patients.Patient(ctx, *in.PatientID)
	if err != nil {
		return nil, db.Classify(err, "patient not found", "error checking patient")
	}

	h := &History{PatientID: p.ID, Observation: *in.Observation}
	if err := s.histories.Create(ctx, h); err != nil {
		return nil, db.Classify(err, msgHistoryNotFound, "error creating clinical history")
	}
	h.PatientName, h.PatientLastName = &p.Name, &p.LastName
	return h, nil
}

func (s *Service) GetHistory(ctx context.Context, id int64) (*History, error) {
	h, err := s.histories.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgHistoryNotFound, "error fetching clinical history")
	}
	return h, nil
}

func (s *Service) ListHistories(ctx context.Context, params map[string]string, limit, offset int) ([]*History, int, error) {
	items, total, err := s.histories.List(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, msgHistoryNotFound, "error listing clinical histories")
	}
	return items, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) (*PatientHistories, error) {
	p, err := s.patients.Patient(ctx, patientID)
	if err != nil {
		return nil, db.Classify(err, "patient not found", "error fetching patient")
	}
	items, err := s.histories.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, db.Classify(err, msgHistoryNotFound, "error listing patient clinical histories")
	}
	return &PatientHistories{Patient: p, ClinicalHistories: items}, nil
}

// UpdateHistory rewrites the observation. The owning patient never changes.
func (s *Service) UpdateHistory(ctx context.Context, id int64, in *HistoryInput) (*History, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Observation == nil {
		return nil, apperr.BadRequest("no fields to update")
	}
	patch := &db.Patch{}
	patch.Set("observation", *in.Observation)
	if err := s.histories.Update(ctx, id, patch); err != nil {
		return nil, db.Classify(err, msgHistoryNotFound, "error updating clinical history")
	}
	return s.GetHistory(ctx, id)
}

func (s *Service) DeleteHistory(ctx context.Context, id int64) error {
	if err := s.histories.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Conflict(msgHasAttachments)
		}
		return db.Classify(err, msgHistoryNotFound, "error deleting clinical history")
	}
	return nil
}

// GetWithAttachments returns the history with its attachment metadata.
func (s *Service) GetWithAttachments(ctx context.Context, id int64) (*History, error) {
	h, err := s.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	items, _, err := s.attachments.List(ctx, id, pagination.MaxLimit, 0)
	if err != nil {
		return nil, db.Classify(err, msgAttachmentNotFound, "error listing attachments")
	}
	h.Attachments = items
	return h, nil
}

// -- Attachments --

func (s *Service) CreateAttachment(ctx context.Context, historyID int64, in *AttachmentInput) (*Attachment, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Filename == nil || in.Base64Content == nil || *in.Base64Content == "" {
		return nil, apperr.BadRequest("filename and base64_content are required")
	}
	if _, err := s.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}

	a := &Attachment{
		ClinicalHistoryID: historyID,
		Filename:          *in.Filename,
		MimeType:          in.MimeType,
		Base64Content:     *in.Base64Content,
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		return nil, db.Classify(err, msgAttachmentNotFound, "error creating attachment")
	}
	return a, nil
}

func (s *Service) ListAttachments(ctx context.Context, historyID int64, limit, offset int) ([]*Attachment, int, error) {
	if _, err := s.GetHistory(ctx, historyID); err != nil {
		return nil, 0, err
	}
	return s.listAttachments(ctx, historyID, limit, offset)
}

func (s *Service) ListAllAttachments(ctx context.Context, limit, offset int) ([]*Attachment, int, error) {
	return s.listAttachments(ctx, 0, limit, offset)
}

func (s *Service) listAttachments(ctx context.Context, historyID int64, limit, offset int) ([]*Attachment, int, error) {
	items, total, err := s.attachments.List(ctx, historyID, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, msgAttachmentNotFound, "error listing attachments")
	}
	return items, total, nil
}

func (s *Service) GetAttachment(ctx context.Context, id int64) (*Attachment, error) {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, db.Classify(err, msgAttachmentNotFound, "error fetching attachment")
	}
	return a, nil
}

func (s *Service) UpdateAttachment(ctx context.Context, id int64, in *AttachmentInput) (*Attachment, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	patch := &db.Patch{}
	if in.Filename != nil {
		patch.Set("filename", *in.Filename)
	}
	if in.MimeType != nil {
		patch.Set("mime_type", *in.MimeType)
	}
	if in.Base64Content != nil {
		if *in.Base64Content == "" {
			return nil, apperr.BadRequest("base64_content cannot be empty")
		}
		patch.Set("base64_content", *in.Base64Content)
	}
	if patch.Empty() {
		return nil, apperr.BadRequest("no fields to update")
	}
	a, err := s.attachments.Update(ctx, id, patch)
	if err != nil {
		return nil, db.Classify(err, msgAttachmentNotFound, "error updating attachment")
	}
	return a, nil
}

func (s *Service) DeleteAttachment(ctx context.Context, id int64) error {
	if err := s.attachments.Delete(ctx, id); err != nil {
		return db.Classify(err, msgAttachmentNotFound, "error deleting attachment")
	}
	return nil
}
