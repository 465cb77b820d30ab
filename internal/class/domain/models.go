// Package domain contains core types for class offerings and enrollment.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
)

const (
	PricingModePerStudent = "PER_STUDENT"
	PricingModeFixedTotal = "FIXED_TOTAL"
)

// Class is a recurring monthly offering. Pricing fields are nullable and
// resolve to zero at billing time.
type Class struct {
	ID                          snowflake.ID          `gorm:"primaryKey" json:"id"`
	Name                        string                `gorm:"column:name;not null" json:"name"`
	Description                 *string               `gorm:"column:description" json:"description,omitempty"`
	TeacherID                   *snowflake.ID         `gorm:"column:teacher_id;index" json:"teacherId,omitempty"`
	Teacher                     *teacherdomain.Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	StartAt                     *time.Time            `gorm:"column:start_at" json:"startAt,omitempty"`
	EndAt                       *time.Time            `gorm:"column:end_at" json:"endAt,omitempty"`
	PricingMode                 string                `gorm:"column:pricing_mode;not null;default:PER_STUDENT" json:"pricingMode"`
	MonthlyPriceCents           *int64                `gorm:"column:monthly_price_cents" json:"monthlyPriceCents,omitempty"`
	FixedMonthlyPriceCents      *int64                `gorm:"column:fixed_monthly_price_cents" json:"fixedMonthlyPriceCents,omitempty"`
	TeacherFixedMonthlyPayCents *int64                `gorm:"column:teacher_fixed_monthly_pay_cents" json:"teacherFixedMonthlyPayCents,omitempty"`
	CreatedAt                   time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt                   time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Class) TableName() string { return "classes" }

// Enrollment joins students to classes.
type Enrollment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClassID   snowflake.ID `gorm:"column:class_id;not null;uniqueIndex:idx_class_students_class_student" json:"classId"`
	StudentID snowflake.ID `gorm:"column:student_id;not null;uniqueIndex:idx_class_students_class_student" json:"studentId"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (Enrollment) TableName() string { return "class_students" }

// EnrolledStudent is a roster row scanned from the enrollment join.
type EnrolledStudent struct {
	StudentID snowflake.ID `gorm:"column:student_id" json:"studentId"`
	FirstName string       `gorm:"column:first_name" json:"firstName"`
	LastName  string       `gorm:"column:last_name" json:"lastName"`
	Email     string       `gorm:"column:email" json:"email"`
}

// ClassDetail is a class with its roster attached.
type ClassDetail struct {
	Class
	Students []EnrolledStudent `json:"students"`
}
