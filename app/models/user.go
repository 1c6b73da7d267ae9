package models

import "time"

type User struct {
	ID        string    `json:"id" validate:"required,uuid"`
	SchoolID  *string   `json:"school_id,omitempty" validate:"omitempty,uuid"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"-" validate:"required,min=8"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role" validate:"required,oneof=super_admin school_admin teacher student parent"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Tenant is the school the user is confined to, or "" for platform users.
func (u *User) Tenant() string {
	if u.SchoolID == nil {
		return ""
	}
	return *u.SchoolID
}
