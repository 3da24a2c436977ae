package model

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleAdmin   Role = "ADMIN"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleCitizen, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents a registered user.
type User struct {
	ID            uint      `json:"user_id" gorm:"column:user_id;primaryKey"`
	Username      string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email         string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"column:password_hash;size:255;not null"` // Never expose in JSON
	Role          Role      `json:"role" gorm:"type:varchar(20);not null;default:'CITIZEN'"`
	ProfilePicURL *string   `json:"profile_pic_url,omitempty" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
