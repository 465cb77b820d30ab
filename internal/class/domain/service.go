package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context) ([]*ClassDetail, error)
	Get(ctx context.Context, id snowflake.ID) (*ClassDetail, error)
	Create(ctx context.Context, req CreateClassRequest) (*ClassDetail, error)
	AddStudent(ctx context.Context, classID, studentID snowflake.ID) (*ClassDetail, error)
	AssignTeacher(ctx context.Context, classID, teacherID snowflake.ID) (*ClassDetail, error)
}

type CreateClassRequest struct {
	Name                        string        `json:"name"`
	Description                 *string       `json:"description"`
	TeacherID                   *snowflake.ID `json:"teacherId"`
	StartAt                     *time.Time    `json:"startAt"`
	EndAt                       *time.Time    `json:"endAt"`
	PricingMode                 string        `json:"pricingMode"`
	MonthlyPriceCents           *int64        `json:"monthlyPriceCents"`
	FixedMonthlyPriceCents      *int64        `json:"fixedMonthlyPriceCents"`
	TeacherFixedMonthlyPayCents *int64        `json:"teacherFixedMonthlyPayCents"`
}
