package models

import "time"

// Roles assigned to portal members.
const (
	RoleMember    = "member"
	RoleOfficer   = "officer"
	RoleExecutive = "executive"
	RoleAdmin     = "admin"
)

// User is a registered portal member.
type User struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
