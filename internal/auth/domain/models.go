// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a system account. Students and teachers each own one
// user row; admins exist on their own.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	FirstName    string            `gorm:"column:first_name;not null" json:"firstName"`
	LastName     string            `gorm:"column:last_name;not null" json:"lastName"`
	Email        string            `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string            `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         string            `gorm:"column:role;not null;default:student" json:"role"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
