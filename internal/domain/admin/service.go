package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentix/dentix/internal/platform/apperr"
	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
	"github.com/dentix/dentix/internal/platform/validation"
)

const msgBadCredentials = "invalid credentials"

// dummyHash is compared against when the email is unknown so both paths
// spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dentix-dummy-password"), bcrypt.DefaultCost)

type Service struct {
	users    UserRepository
	config   ConfigRepository
	validate *validator.Validate
	cost     int
}

func NewService(users UserRepository, config ConfigRepository, v *validator.Validate) *Service {
	return &Service{users: users, config: config, validate: v, cost: bcrypt.DefaultCost}
}

// Authenticate implements auth.Authenticator.
func (s *Service) Authenticate(ctx context.Context, email, password string) (auth.Subject, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return auth.Subject{}, apperr.Unauthenticated(msgBadCredentials)
		}
		return auth.Subject{}, apperr.Internal("error fetching user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return auth.Subject{}, apperr.Unauthenticated(msgBadCredentials)
		}
		return auth.Subject{}, apperr.Internal("error checking password", err)
	}
	if !u.Status {
		return auth.Subject{}, apperr.Unauthenticated("user is inactive")
	}
	return auth.Subject{
		ID:       strconv.FormatInt(u.ID, 10),
		Email:    u.Email,
		Roles:    u.Roles,
		TenantID: u.TenantID,
	}, nil
}

// CreateUser hashes the password and stores the account in tenantID.
func (s *Service) CreateUser(ctx context.Context, tenantID string, in *UserInput) (*User, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if !db.ValidTenantID(tenantID) {
		return nil, apperr.BadRequestf("invalid tenant id: %q", tenantID)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal("error hashing password", err)
	}

	u := &User{
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         in.Name,
		PasswordHash: string(hash),
		Roles:        in.Roles,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict("a user with this email already exists")
		}
		return nil, apperr.Internal("error creating user", err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	items, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, db.Classify(err, "user not found", "error listing users")
	}
	return items, total, nil
}

// DeactivateUser disables login for a user. Admins cannot disable their own
// account.
func (s *Service) DeactivateUser(ctx context.Context, id int64) error {
	if strconv.FormatInt(id, 10) == auth.UserIDFromContext(ctx) {
		return apperr.BadRequest("cannot deactivate your own account")
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return db.Classify(err, "user not found", "error deactivating user")
	}
	return nil
}

// -- Reference data --

func (s *Service) BloodTypes(ctx context.Context) ([]*BloodType, error) {
	items, err := s.config.BloodTypes(ctx)
	if err != nil {
		return nil, apperr.Internal("error fetching blood types", err)
	}
	return items, nil
}

func (s *Service) SpecialtyDentists(ctx context.Context) ([]*SpecialtyDentist, error) {
	items, err := s.config.SpecialtyDentists(ctx)
	if err != nil {
		return nil, db.Classify(err, "dentist not found", "error fetching dentists")
	}
	return items, nil
}

func (s *Service) Offices(ctx context.Context) ([]*Office, error) {
	items, err := s.config.Offices(ctx)
	if err != nil {
		return nil, db.Classify(err, "office not found", "error fetching offices")
	}
	return items, nil
}
