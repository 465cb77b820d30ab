package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context, req ListTeachersRequest) ([]*Teacher, error)
	Get(ctx context.Context, id snowflake.ID) (*Teacher, error)
	Create(ctx context.Context, req CreateTeacherRequest) (*CreateTeacherResult, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateTeacherRequest) (*Teacher, error)
}

type ListTeachersRequest struct {
	Search string
}

// CreateTeacherRequest is the canonical create payload. Handlers accept
// both flat and nested user shapes and normalize into this.
type CreateTeacherRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	Subject              *string
	Phone                *string
	Address              *string
	BirthDate            *time.Time
	HireDate             *time.Time
	FixedMonthlyPayCents *int64
}

// CreateTeacherResult carries the one-time temp password when the request
// did not supply one.
type CreateTeacherResult struct {
	Teacher      *Teacher
	TempPassword string
}

type UpdateTeacherRequest struct {
	FirstName *string
	LastName  *string
	Email     *string

	Subject              *string
	Phone                *string
	Address              *string
	BirthDate            *time.Time
	HireDate             *time.Time
	FixedMonthlyPayCents *int64
}
