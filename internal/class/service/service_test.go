package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	"github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/clock"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

type stubBilling struct {
	billingdomain.Service
	ensured []snowflake.ID
}

func (s *stubBilling) EnsureForStudent(ctx context.Context, studentID snowflake.ID) (*billingdomain.Invoice, error) {
	s.ensured = append(s.ensured, studentID)
	return nil, nil
}

func newClassService(t *testing.T) (domain.Service, *gorm.DB, *stubBilling, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&teacherdomain.Teacher{},
		&studentdomain.Student{},
		&domain.Class{},
		&domain.Enrollment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	billing := &stubBilling{}

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clock.NewFakeClock(time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)),
		Classes: repository.ProvideStore[domain.Class](db),
		Billing: billing,
	})
	return svc, db, billing, node
}

func seedTeacher(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) *teacherdomain.Teacher {
	t.Helper()

	user := &authdomain.User{
		ID:           node.Generate(),
		FirstName:    "Tarik",
		LastName:     "Teacher",
		Email:        email,
		PasswordHash: "x",
		Role:         authdomain.RoleTeacher,
	}
	require.NoError(t, db.Create(user).Error)

	teacher := &teacherdomain.Teacher{ID: node.Generate(), UserID: user.ID}
	require.NoError(t, db.Create(teacher).Error)
	return teacher
}

func seedStudentRow(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) *studentdomain.Student {
	t.Helper()

	user := &authdomain.User{
		ID:           node.Generate(),
		FirstName:    "Sami",
		LastName:     "Student",
		Email:        email,
		PasswordHash: "x",
		Role:         authdomain.RoleStudent,
	}
	require.NoError(t, db.Create(user).Error)

	student := &studentdomain.Student{
		ID:            node.Generate(),
		UserID:        user.ID,
		PaymentStatus: studentdomain.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func TestCreateClass(t *testing.T) {
	svc, _, _, _ := newClassService(t)
	ctx := context.Background()

	price := int64(20000)
	detail, err := svc.Create(ctx, domain.CreateClassRequest{
		Name:              "  Algebra  ",
		MonthlyPriceCents: &price,
	})
	require.NoError(t, err)

	assert.Equal(t, "Algebra", detail.Name)
	assert.Equal(t, domain.PricingModePerStudent, detail.PricingMode)
	assert.Empty(t, detail.Students)
}

func TestCreateClass_Validation(t *testing.T) {
	svc, _, _, _ := newClassService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateClassRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = svc.Create(ctx, domain.CreateClassRequest{Name: "Algebra", PricingMode: "HOURLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidPricingMode)

	unknown := snowflake.ID(999)
	_, err = svc.Create(ctx, domain.CreateClassRequest{Name: "Algebra", TeacherID: &unknown})
	assert.ErrorIs(t, err, domain.ErrTeacherNotFound)
}

func TestAddStudent_EnrollsAndEnsuresBilling(t *testing.T) {
	svc, db, billing, node := newClassService(t)
	ctx := context.Background()

	detail, err := svc.Create(ctx, domain.CreateClassRequest{Name: "Algebra"})
	require.NoError(t, err)
	student := seedStudentRow(t, db, node, "sami@example.com")

	detail, err = svc.AddStudent(ctx, detail.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, detail.Students, 1)
	assert.Equal(t, student.ID, detail.Students[0].StudentID)
	assert.Equal(t, []snowflake.ID{student.ID}, billing.ensured)

	// Duplicate enrollment is a no-op, but the ensure hook still runs.
	detail, err = svc.AddStudent(ctx, detail.ID, student.ID)
	require.NoError(t, err)
	require.Len(t, detail.Students, 1)
	assert.Len(t, billing.ensured, 2)

	_, err = svc.AddStudent(ctx, detail.ID, snowflake.ID(999))
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)

	_, err = svc.AddStudent(ctx, snowflake.ID(999), student.ID)
	assert.ErrorIs(t, err, domain.ErrClassNotFound)
}

func TestAssignTeacher(t *testing.T) {
	svc, db, _, node := newClassService(t)
	ctx := context.Background()

	detail, err := svc.Create(ctx, domain.CreateClassRequest{Name: "Algebra"})
	require.NoError(t, err)
	teacher := seedTeacher(t, db, node, "tarik@example.com")

	updated, err := svc.AssignTeacher(ctx, detail.ID, teacher.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.TeacherID)
	assert.Equal(t, teacher.ID, *updated.TeacherID)
	require.NotNil(t, updated.Teacher)
	assert.Equal(t, "tarik@example.com", updated.Teacher.User.Email)

	_, err = svc.AssignTeacher(ctx, detail.ID, snowflake.ID(999))
	assert.ErrorIs(t, err, domain.ErrTeacherNotFound)
}

func TestGetClass_NotFound(t *testing.T) {
	svc, _, _, _ := newClassService(t)

	_, err := svc.Get(context.Background(), snowflake.ID(404))
	assert.ErrorIs(t, err, domain.ErrClassNotFound)
}
