package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values.
const (
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// User is a community-watch volunteer or administrator.
type User struct {
	UserID       string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string         `gorm:"type:varchar(120);not null"                     json:"name"`
	Phone        *string        `gorm:"type:varchar(32)"                               json:"phone,omitempty"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string         `gorm:"type:varchar(20);not null;default:'volunteer'"  json:"role"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index"                                          json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
