package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context, req ListStudentsRequest) ([]*StudentDetail, error)
	Get(ctx context.Context, id snowflake.ID) (*StudentDetail, error)
	Create(ctx context.Context, req CreateStudentRequest) (*CreateStudentResult, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateStudentRequest) (*StudentDetail, error)

	SetClasses(ctx context.Context, id snowflake.ID, classIDs []snowflake.ID) (*StudentDetail, error)
	AddClass(ctx context.Context, id, classID snowflake.ID) (*StudentDetail, error)
	RemoveClass(ctx context.Context, id, classID snowflake.ID) (*StudentDetail, error)

	SetPriceOverride(ctx context.Context, id, classID snowflake.ID, priceCents int64) error
	ClearPriceOverride(ctx context.Context, id, classID snowflake.ID) error
}

type ListStudentsRequest struct {
	Search string
}

// CreateStudentRequest is the canonical create payload. Handlers accept
// both flat and nested user shapes and normalize into this.
type CreateStudentRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	BirthDate      *time.Time
	Address        *string
	Phone          *string
	ParentName     *string
	ParentPhone    *string
	EnrollmentDate *time.Time
}

// CreateStudentResult carries the one-time temp password when the request
// did not supply one.
type CreateStudentResult struct {
	Student      *StudentDetail
	TempPassword string
}

type UpdateStudentRequest struct {
	FirstName *string
	LastName  *string
	Email     *string

	BirthDate      *time.Time
	Address        *string
	Phone          *string
	ParentName     *string
	ParentPhone    *string
	EnrollmentDate *time.Time
}
