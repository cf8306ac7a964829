package treatment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

// -- Mock Treatment Repository --

type mockTreatmentRepo struct {
	items  map[int64]*Treatment
	nextID int64
}

func newMockTreatmentRepo() *mockTreatmentRepo {
	return &mockTreatmentRepo{items: make(map[int64]*Treatment)}
}

func (m *mockTreatmentRepo) get(ctx context.Context, id int64) (*Treatment, bool) {
	t, ok := m.items[id]
	if !ok || t.TenantID != db.TenantFromContext(ctx) {
		return nil, false
	}
	return t, true
}

func (m *mockTreatmentRepo) Create(ctx context.Context, t *Treatment) error {
	m.nextID++
	t.ID = m.nextID
	t.TenantID = db.TenantFromContext(ctx)
	t.CreatedAt = time.Now()
	m.items[t.ID] = t
	return nil
}

func (m *mockTreatmentRepo) GetByID(ctx context.Context, id int64) (*Treatment, error) {
	if t, ok := m.get(ctx, id); ok {
		return t, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockTreatmentRepo) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Treatment, int, error) {
	result := []*Treatment{}
	for _, t := range m.items {
		if t.TenantID == db.TenantFromContext(ctx) {
			result = append(result, t)
		}
	}
	return result, len(result), nil
}

func (m *mockTreatmentRepo) ListByAppointment(ctx context.Context, appointmentID int64) ([]*Treatment, error) {
	result := []*Treatment{}
	for _, t := range m.items {
		if t.TenantID == db.TenantFromContext(ctx) && t.AppointmentID == appointmentID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTreatmentRepo) ListByPatient(ctx context.Context, patientID int64, params map[string]string) ([]*Treatment, error) {
	return []*Treatment{}, nil
}

func (m *mockTreatmentRepo) Update(ctx context.Context, id int64, patch *db.Patch) error {
	t, ok := m.get(ctx, id)
	if !ok {
		return pgx.ErrNoRows
	}
	for col, v := range patch.Fields() {
		switch col {
		case "description":
			t.Description = v.(string)
		case "cost":
			t.Cost = v.(float64)
		case "completed":
			t.Completed = v.(bool)
		case "appointment_id":
			t.AppointmentID = v.(int64)
		}
	}
	return nil
}

func (m *mockTreatmentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.get(ctx, id); !ok {
		return pgx.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockTreatmentRepo) Stats(ctx context.Context, params map[string]string) (*Stats, error) {
	var s Stats
	for _, t := range m.items {
		if t.TenantID != db.TenantFromContext(ctx) {
			continue
		}
		s.Total++
		s.TotalRevenue += t.Cost
		if t.Completed {
			s.Completed++
			s.CompletedRevenue += t.Cost
		} else {
			s.Pending++
		}
	}
	if s.Total > 0 {
		s.AverageCost = s.TotalRevenue / float64(s.Total)
	}
	return &s, nil
}

// -- Mock References --

type mockRefs struct {
	appointments map[int64]bool
}

func (m *mockRefs) Appointment(ctx context.Context, id int64) (*AppointmentRef, error) {
	if !m.appointments[id] {
		return nil, pgx.ErrNoRows
	}
	return &AppointmentRef{ID: id, Status: "pending", PatientName: "Ana"}, nil
}

func (m *mockRefs) Patient(ctx context.Context, id int64) (*PatientRef, error) {
	if id != 1 {
		return nil, pgx.ErrNoRows
	}
	return &PatientRef{ID: 1, Name: "Ana", LastName: "Lopez"}, nil
}

func int64Ptr(v int64) *int64       { return &v }
func strPtr(s string) *string        { return &s }
func float64Ptr(f float64) *float64 { return &f }

func newTestService() (*Service, *mockTreatmentRepo) {
	repo := newMockTreatmentRepo()
	refs := &mockRefs{appointments: map[int64]bool{1: true, 2: true}}
	return NewService(repo, refs, validation.New()), repo
}

func tenantCtx() context.Context {
	return db.WithTenant(context.Background(), "clinic_a")
}

func cleaning() *TreatmentInput {
	return &TreatmentInput{AppointmentID: int64Ptr(1), Description: strPtr("cleaning"), Cost: float64Ptr(80)}
}

func TestService_CreateTreatment(t *testing.T) {
	svc, _ := newTestService()
	tr, err := svc.CreateTreatment(tenantCtx(), cleaning())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ID == 0 || tr.Cost != 80 || tr.Completed {
		t.Errorf("unexpected treatment %+v", tr)
	}
}

func TestService_CreateTreatment_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   *TreatmentInput
		kind error
	}{
		{"missing description", &TreatmentInput{AppointmentID: int64Ptr(1)}, apperr.ErrBadRequest},
		{"negative cost", &TreatmentInput{AppointmentID: int64Ptr(1), Description: strPtr("x"), Cost: float64Ptr(-1)}, apperr.ErrBadRequest},
		{"unknown appointment", &TreatmentInput{AppointmentID: int64Ptr(9), Description: strPtr("x")}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			if _, err := svc.CreateTreatment(tenantCtx(), tt.in); !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if len(repo.items) != 0 {
				t.Error("expected no write")
			}
		})
	}
}

func TestService_UpdateTreatment(t *testing.T) {
	svc, _ := newTestService()
	tr, _ := svc.CreateTreatment(tenantCtx(), cleaning())

	got, err := svc.UpdateTreatment(tenantCtx(), tr.ID, &TreatmentInput{Cost: float64Ptr(95.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cost != 95.5 || got.Description != "cleaning" {
		t.Errorf("unexpected treatment %+v", got)
	}

	if _, err := svc.UpdateTreatment(tenantCtx(), tr.ID, &TreatmentInput{}); !errors.Is(err, apperr.ErrBadRequest) {
		t.Errorf("expected bad request for empty update, got %v", err)
	}
	if _, err := svc.UpdateTreatment(tenantCtx(), tr.ID, &TreatmentInput{AppointmentID: int64Ptr(9)}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for unknown appointment, got %v", err)
	}
}

func TestService_CompleteTreatment(t *testing.T) {
	svc, _ := newTestService()
	tr, _ := svc.CreateTreatment(tenantCtx(), cleaning())

	got, err := svc.CompleteTreatment(tenantCtx(), tr.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Completed {
		t.Error("expected treatment to be completed")
	}
	if _, err := svc.CompleteTreatment(tenantCtx(), tr.ID); !errors.Is(err, apperr.ErrBadRequest) {
		t.Errorf("expected bad request on second completion, got %v", err)
	}
}

func TestService_DeleteTreatment(t *testing.T) {
	svc, _ := newTestService()
	tr, _ := svc.CreateTreatment(tenantCtx(), cleaning())

	other := db.WithTenant(context.Background(), "clinic_b")
	if err := svc.DeleteTreatment(other, tr.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}
	if err := svc.DeleteTreatment(tenantCtx(), tr.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_ListByAppointment(t *testing.T) {
	svc, _ := newTestService()
	svc.CreateTreatment(tenantCtx(), cleaning())
	svc.CreateTreatment(tenantCtx(), &TreatmentInput{AppointmentID: int64Ptr(2), Description: strPtr("filling")})

	res, err := svc.ListByAppointment(tenantCtx(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Appointment.ID != 1 || len(res.Treatments) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestService_Stats(t *testing.T) {
	svc, _ := newTestService()
	a, _ := svc.CreateTreatment(tenantCtx(), cleaning())
	svc.CreateTreatment(tenantCtx(), &TreatmentInput{AppointmentID: int64Ptr(2), Description: strPtr("filling"), Cost: float64Ptr(120)})
	svc.CompleteTreatment(tenantCtx(), a.ID)

	st, err := svc.Stats(tenantCtx(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Total != 2 || st.Completed != 1 || st.TotalRevenue != 200 || st.CompletedRevenue != 80 || st.AverageCost != 100 {
		t.Errorf("unexpected stats %+v", st)
	}
}
