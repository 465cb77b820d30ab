package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	"github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/clock"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Classes repository.Repository[domain.Class]
	Billing billingdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	classes repository.Repository[domain.Class]
	billing billingdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("class.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		classes: p.Classes,
		billing: p.Billing,
	}
}

func (s *Service) List(ctx context.Context) ([]*domain.ClassDetail, error) {
	var classes []*domain.Class
	err := s.db.WithContext(ctx).
		Preload("Teacher").Preload("Teacher.User").
		Order("start_at ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}

	details := make([]*domain.ClassDetail, 0, len(classes))
	for _, class := range classes {
		students, err := s.roster(ctx, class.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, &domain.ClassDetail{Class: *class, Students: students})
	}
	return details, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.ClassDetail, error) {
	var class domain.Class
	err := s.db.WithContext(ctx).
		Preload("Teacher").Preload("Teacher.User").
		First(&class, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClassNotFound
		}
		return nil, err
	}

	students, err := s.roster(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ClassDetail{Class: class, Students: students}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateClassRequest) (*domain.ClassDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	mode := strings.TrimSpace(req.PricingMode)
	switch mode {
	case "":
		mode = domain.PricingModePerStudent
	case domain.PricingModePerStudent, domain.PricingModeFixedTotal:
	default:
		return nil, domain.ErrInvalidPricingMode
	}

	if req.TeacherID != nil {
		if err := s.teacherExists(ctx, *req.TeacherID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	class := &domain.Class{
		ID:                          s.genID.Generate(),
		Name:                        name,
		Description:                 req.Description,
		TeacherID:                   req.TeacherID,
		StartAt:                     req.StartAt,
		EndAt:                       req.EndAt,
		PricingMode:                 mode,
		MonthlyPriceCents:           req.MonthlyPriceCents,
		FixedMonthlyPriceCents:      req.FixedMonthlyPriceCents,
		TeacherFixedMonthlyPayCents: req.TeacherFixedMonthlyPayCents,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}

	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	s.log.Info("class created", zap.String("class_id", class.ID.String()))

	return s.Get(ctx, class.ID)
}

func (s *Service) AddStudent(ctx context.Context, classID, studentID snowflake.ID) (*domain.ClassDetail, error) {
	if err := s.classExists(ctx, classID); err != nil {
		return nil, err
	}
	if err := s.studentExists(ctx, studentID); err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		ID:        s.genID.Generate(),
		ClassID:   classID,
		StudentID: studentID,
		CreatedAt: s.clock.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment).Error
	if err != nil {
		return nil, err
	}

	if _, err := s.billing.EnsureForStudent(ctx, studentID); err != nil {
		return nil, err
	}

	return s.Get(ctx, classID)
}

func (s *Service) AssignTeacher(ctx context.Context, classID, teacherID snowflake.ID) (*domain.ClassDetail, error) {
	if err := s.classExists(ctx, classID); err != nil {
		return nil, err
	}
	if err := s.teacherExists(ctx, teacherID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&domain.Class{}).
		Where("id = ?", classID).
		Updates(map[string]any{
			"teacher_id": teacherID,
			"updated_at": s.clock.Now(),
		}).Error
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, classID)
}

func (s *Service) roster(ctx context.Context, classID snowflake.ID) ([]domain.EnrolledStudent, error) {
	var rows []domain.EnrolledStudent
	err := s.db.WithContext(ctx).Raw(`
		SELECT st.id AS student_id, u.first_name, u.last_name, u.email
		FROM class_students cs
		JOIN students st ON st.id = cs.student_id
		JOIN users u ON u.id = st.user_id
		WHERE cs.class_id = ?
		ORDER BY cs.id ASC
	`, classID).Scan(&rows).Error
	if rows == nil {
		rows = []domain.EnrolledStudent{}
	}
	return rows, err
}

func (s *Service) classExists(ctx context.Context, id snowflake.ID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Class{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrClassNotFound
	}
	return nil
}

func (s *Service) studentExists(ctx context.Context, id snowflake.ID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&studentdomain.Student{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (s *Service) teacherExists(ctx context.Context, id snowflake.ID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&teacherdomain.Teacher{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrTeacherNotFound
	}
	return nil
}
