//go:build integration

package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/dentix/dentix/internal/domain/identity"
	"github.com/dentix/dentix/internal/domain/scheduling"
	"github.com/dentix/dentix/internal/domain/treatment"
	"github.com/dentix/dentix/internal/platform/apperr"
)

func newSchedulingService() *scheduling.Service {
	return scheduling.NewService(
		scheduling.NewAppointmentRepo(globalDB.Pool),
		scheduling.NewReferences(globalDB.Pool),
		newValidator(),
	)
}

func TestAppointmentSlotConflict(t *testing.T) {
	tenantID := uniqueTenantID("sched")
	ctx := tenantCtx(tenantID)

	patient, err := newPatientService().CreatePatient(ctx, &identity.PatientInput{Name: ptr("Eva"), LastName: ptr("Lopez")})
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	dentistID := seedDentist(t, ctx, tenantID, "Dr. Vega")
	officeID := seedOffice(t, ctx, tenantID, "Room 1")
	svc := newSchedulingService()

	at := time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC)
	in := &scheduling.AppointmentInput{
		PatientID:       &patient.ID,
		DentistID:       &dentistID,
		OfficeID:        &officeID,
		AppointmentTime: &at,
	}

	first, err := svc.CreateAppointment(ctx, in)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if first.Status != scheduling.StatusPending {
		t.Errorf("status = %q, want pending", first.Status)
	}

	if _, err := svc.CreateAppointment(ctx, in); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for same dentist and time, got %v", err)
	}

	if _, err := svc.UpdateAppointment(ctx, first.ID, &scheduling.AppointmentInput{Status: ptr(scheduling.StatusCancelled)}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.CreateAppointment(ctx, in); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}

	byDentist, err := svc.ListByDentist(ctx, dentistID, nil)
	if err != nil {
		t.Fatalf("ListByDentist: %v", err)
	}
	if len(byDentist.Appointments) != 2 {
		t.Errorf("expected 2 appointments for dentist, got %d", len(byDentist.Appointments))
	}
}

func TestTreatmentLifecycle(t *testing.T) {
	tenantID := uniqueTenantID("treat")
	ctx := tenantCtx(tenantID)

	patient, err := newPatientService().CreatePatient(ctx, &identity.PatientInput{Name: ptr("Raul"), LastName: ptr("Diaz")})
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	dentistID := seedDentist(t, ctx, tenantID, "Dr. Soto")
	officeID := seedOffice(t, ctx, tenantID, "Room 2")
	at := time.Date(2030, 6, 1, 15, 30, 0, 0, time.UTC)
	appt, err := newSchedulingService().CreateAppointment(ctx, &scheduling.AppointmentInput{
		PatientID: &patient.ID, DentistID: &dentistID, OfficeID: &officeID, AppointmentTime: &at,
	})
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	svc := treatment.NewService(treatment.NewTreatmentRepo(globalDB.Pool), treatment.NewReferences(globalDB.Pool), newValidator())

	cleaning, err := svc.CreateTreatment(ctx, &treatment.TreatmentInput{AppointmentID: &appt.ID, Description: ptr("Cleaning"), Cost: ptr(40.0)})
	if err != nil {
		t.Fatalf("CreateTreatment: %v", err)
	}
	if _, err := svc.CreateTreatment(ctx, &treatment.TreatmentInput{AppointmentID: &appt.ID, Description: ptr("Filling"), Cost: ptr(60.0)}); err != nil {
		t.Fatalf("CreateTreatment: %v", err)
	}

	done, err := svc.CompleteTreatment(ctx, cleaning.ID)
	if err != nil {
		t.Fatalf("CompleteTreatment: %v", err)
	}
	if !done.Completed {
		t.Error("expected completed")
	}
	if _, err := svc.CompleteTreatment(ctx, cleaning.ID); !errors.Is(err, apperr.ErrBadRequest) {
		t.Fatalf("expected bad request on second completion, got %v", err)
	}

	st, err := svc.Stats(ctx, nil)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 2 || st.Completed != 1 || st.Pending != 1 {
		t.Errorf("unexpected counts %+v", st)
	}
	if st.TotalRevenue != 100 || st.CompletedRevenue != 40 {
		t.Errorf("unexpected revenue %+v", st)
	}

	byAppt, err := svc.ListByAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("ListByAppointment: %v", err)
	}
	if len(byAppt.Treatments) != 2 {
		t.Errorf("expected 2 treatments, got %d", len(byAppt.Treatments))
	}
}
