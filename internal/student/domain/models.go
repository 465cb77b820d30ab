// Package domain contains core types for the student directory.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
)

// Student payment status, derived from the current-month invoice. Only
// the billing rollup writes it.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusUnpaid  = "unpaid"
)

// Student is the directory record behind a student user account.
type Student struct {
	ID             snowflake.ID     `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID     `gorm:"column:user_id;not null;uniqueIndex" json:"userId"`
	User           *authdomain.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BirthDate      *time.Time       `gorm:"column:birth_date" json:"birthDate,omitempty"`
	Address        *string          `gorm:"column:address" json:"address,omitempty"`
	Phone          *string          `gorm:"column:phone" json:"phone,omitempty"`
	ParentName     *string          `gorm:"column:parent_name" json:"parentName,omitempty"`
	ParentPhone    *string          `gorm:"column:parent_phone" json:"parentPhone,omitempty"`
	EnrollmentDate *time.Time       `gorm:"column:enrollment_date" json:"enrollmentDate,omitempty"`
	PaymentStatus  string           `gorm:"column:payment_status;not null;default:unpaid" json:"paymentStatus"`
	CreatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Student) TableName() string { return "students" }

// ClassSummary is an enrolled-class row scanned from the enrollment join.
type ClassSummary struct {
	ID                snowflake.ID `gorm:"column:id" json:"id"`
	Name              string       `gorm:"column:name" json:"name"`
	MonthlyPriceCents *int64       `gorm:"column:monthly_price_cents" json:"monthlyPriceCents,omitempty"`
}

// StudentDetail is a student with enrolled classes and the naive monthly
// total (sum of listed class prices, before overrides).
type StudentDetail struct {
	Student
	Classes           []ClassSummary `json:"classes"`
	MonthlyTotalCents int64          `json:"monthlyTotalCents"`
}
