// Package domain contains core types for the teacher directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
)

// Teacher is the directory record behind a teacher user account.
type Teacher struct {
	ID                   snowflake.ID     `gorm:"primaryKey" json:"id"`
	UserID               snowflake.ID     `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	User                 *authdomain.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Subject              *string          `gorm:"column:subject" json:"subject,omitempty"`
	Phone                *string          `gorm:"column:phone" json:"phone,omitempty"`
	Address              *string          `gorm:"column:address" json:"address,omitempty"`
	BirthDate            *time.Time       `gorm:"column:birth_date" json:"birthDate,omitempty"`
	HireDate             *time.Time       `gorm:"column:hire_date" json:"hireDate,omitempty"`
	FixedMonthlyPayCents *int64           `gorm:"column:fixed_monthly_pay_cents" json:"fixedMonthlyPayCents,omitempty"`
	CreatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt            time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Teacher) TableName() string { return "teachers" }
