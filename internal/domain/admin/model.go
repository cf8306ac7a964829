package admin

import (
	"time"
)

// User maps to users. Email is unique across tenants so login can resolve
// the tenant from it.
type User struct {
	ID           int64     `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Roles        []string  `db:"roles" json:"roles"`
	Status       bool      `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type UserInput struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,max=200"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=admin dentist assistant receptionist"`
}

// BloodType and Specialty are global catalogs.
type BloodType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SpecialtyDentist is a dentist of the tenant with its specialty name.
type SpecialtyDentist struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Specialty string  `json:"specialty"`
}

type Office struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}
