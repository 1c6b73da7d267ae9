package models

// Role is the single role a user signs in with.
type Role string

const (
	SuperAdmin  Role = "super_admin"
	SchoolAdmin Role = "school_admin"
	Teacher     Role = "teacher"
	StudentRole Role = "student"
	ParentRole  Role = "parent"
)

// Roles lists every role in order of privilege.
var Roles = []Role{SuperAdmin, SchoolAdmin, Teacher, StudentRole, ParentRole}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// CrossTenant reports whether the role may read every school's data.
func (r Role) CrossTenant() bool {
	return r == SuperAdmin
}
