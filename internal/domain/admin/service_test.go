package admin

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

// -- Mock Repositories --

type mockUserRepo struct {
	users  map[int64]*User
	nextID int64
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.Status = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	result := []*User{}
	for _, u := range m.users {
		if u.TenantID == db.TenantFromContext(ctx) {
			result = append(result, u)
		}
	}
	return result, len(result), nil
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok || !u.Status || u.TenantID != db.TenantFromContext(ctx) {
		return pgx.ErrNoRows
	}
	u.Status = false
	return nil
}

type mockConfigRepo struct {
	offices map[string][]*Office
	err     error
}

func (m *mockConfigRepo) BloodTypes(context.Context) ([]*BloodType, error) {
	return []*BloodType{{ID: 1, Name: "A+"}, {ID: 2, Name: "O-"}}, m.err
}

func (m *mockConfigRepo) SpecialtyDentists(context.Context) ([]*SpecialtyDentist, error) {
	return []*SpecialtyDentist{{ID: 1, Name: "Dr. Rivas", Specialty: "Orthodontics"}}, m.err
}

func (m *mockConfigRepo) Offices(ctx context.Context) ([]*Office, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.offices[db.TenantFromContext(ctx)], nil
}

func newTestService() (*Service, *mockUserRepo, *mockConfigRepo) {
	users := newMockUserRepo()
	cfg := &mockConfigRepo{offices: map[string][]*Office{
		"clinic_a": {{ID: 1, Name: "Room 1"}},
		"clinic_b": {{ID: 2, Name: "Room B"}, {ID: 3, Name: "Room C"}},
	}}
	svc := NewService(users, cfg, validation.New())
	svc.cost = bcrypt.MinCost
	return svc, users, cfg
}

func seedUser(t *testing.T, svc *Service, tenant, email string) *User {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), tenant, &UserInput{
		Email: email, Name: "Test User", Password: "s3cret-pass", Roles: []string{auth.RoleDentist},
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// -- Users --

func TestService_CreateUser(t *testing.T) {
	svc, _, _ := newTestService()
	u := seedUser(t, svc, "clinic_a", "Dr.Rivas@Example.com")

	if u.Email != "dr.rivas@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Error("expected hash to match password")
	}
}

func TestService_CreateUser_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	tests := []struct {
		name   string
		tenant string
		in     *UserInput
		want   error
	}{
		{"short password", "clinic_a", &UserInput{Email: "a@b.co", Name: "A", Password: "short", Roles: []string{"admin"}}, apperr.ErrBadRequest},
		{"unknown role", "clinic_a", &UserInput{Email: "a@b.co", Name: "A", Password: "longenough", Roles: []string{"physician"}}, apperr.ErrBadRequest},
		{"no roles", "clinic_a", &UserInput{Email: "a@b.co", Name: "A", Password: "longenough"}, apperr.ErrBadRequest},
		{"bad tenant", "clinic a", &UserInput{Email: "a@b.co", Name: "A", Password: "longenough", Roles: []string{"admin"}}, apperr.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(context.Background(), tt.tenant, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	seedUser(t, svc, "clinic_a", "dup@example.com")
	_, err := svc.CreateUser(context.Background(), "clinic_b", &UserInput{
		Email: "dup@example.com", Name: "Other", Password: "longenough", Roles: []string{"admin"},
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, users, _ := newTestService()
	u := seedUser(t, svc, "clinic_a", "dentist@example.com")

	sub, err := svc.Authenticate(context.Background(), "dentist@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ID != strconv.FormatInt(u.ID, 10) || sub.TenantID != "clinic_a" || sub.Email != u.Email {
		t.Errorf("unexpected subject %+v", sub)
	}
	if len(sub.Roles) != 1 || sub.Roles[0] != auth.RoleDentist {
		t.Errorf("unexpected roles %v", sub.Roles)
	}

	if _, err := svc.Authenticate(context.Background(), "dentist@example.com", "wrong"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret-pass"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated for unknown email, got %v", err)
	}

	users.users[u.ID].Status = false
	if _, err := svc.Authenticate(context.Background(), "dentist@example.com", "s3cret-pass"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated for inactive user, got %v", err)
	}
}

func TestService_Authenticate_StorageError(t *testing.T) {
	svc, users, _ := newTestService()
	users.err = errors.New("connection refused")
	if _, err := svc.Authenticate(context.Background(), "a@b.co", "x"); !errors.Is(err, apperr.ErrInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestService_DeactivateUser(t *testing.T) {
	svc, _, _ := newTestService()
	admin := seedUser(t, svc, "clinic_a", "admin@example.com")
	other := seedUser(t, svc, "clinic_a", "other@example.com")
	foreign := seedUser(t, svc, "clinic_b", "foreign@example.com")

	ctx := db.WithTenant(context.Background(), "clinic_a")
	ctx = auth.WithClaims(ctx, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(admin.ID, 10)},
		Email:            admin.Email,
		Roles:            []string{auth.RoleAdmin},
	})

	if err := svc.DeactivateUser(ctx, admin.ID); !errors.Is(err, apperr.ErrBadRequest) {
		t.Errorf("expected bad request for self, got %v", err)
	}
	if err := svc.DeactivateUser(ctx, other.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeactivateUser(ctx, foreign.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found across tenants, got %v", err)
	}
}

// -- Reference data --

func TestService_Offices_TenantScoped(t *testing.T) {
	svc, _, _ := newTestService()
	items, err := svc.Offices(db.WithTenant(context.Background(), "clinic_b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 offices, got %d", len(items))
	}
}

func TestService_BloodTypes_StorageError(t *testing.T) {
	svc, _, cfg := newTestService()
	cfg.err = errors.New("relation blood_types does not exist")
	_, err := svc.BloodTypes(context.Background())
	if !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if apperr.StatusCode(err) != 500 {
		t.Errorf("expected 500, got %d", apperr.StatusCode(err))
	}
}
