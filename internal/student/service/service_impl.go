package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	"github.com/Yassinesbr/support-center/internal/auth/password"
	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/clock"
	"github.com/Yassinesbr/support-center/internal/student/domain"
	"github.com/Yassinesbr/support-center/pkg/db"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Users    repository.Repository[authdomain.User]
	Students repository.Repository[domain.Student]
	Billing  billingdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	users    repository.Repository[authdomain.User]
	students repository.Repository[domain.Student]
	billing  billingdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("student.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		users:    p.Users,
		students: p.Students,
		billing:  p.Billing,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListStudentsRequest) ([]*domain.StudentDetail, error) {
	q := s.db.WithContext(ctx).Model(&domain.Student{}).Preload("User")

	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Joins("JOIN users ON users.id = students.user_id").
			Where(`LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(users.email) LIKE ?`,
				pattern, pattern, pattern)
	}

	var students []*domain.Student
	if err := q.Order("students.id ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	details := make([]*domain.StudentDetail, 0, len(students))
	for _, student := range students {
		detail, err := s.withClasses(ctx, student)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.StudentDetail, error) {
	var student domain.Student
	err := s.db.WithContext(ctx).Preload("User").First(&student, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return s.withClasses(ctx, &student)
}

func (s *Service) Create(ctx context.Context, req domain.CreateStudentRequest) (*domain.CreateStudentResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, domain.ErrEmailRequired
	}

	plain := req.Password
	tempPassword := ""
	if strings.TrimSpace(plain) == "" {
		generated, err := password.GenerateTemp()
		if err != nil {
			return nil, err
		}
		plain = generated
		tempPassword = generated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         authdomain.RoleStudent,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	student := &domain.Student{
		ID:             s.genID.Generate(),
		UserID:         user.ID,
		BirthDate:      req.BirthDate,
		Address:        req.Address,
		Phone:          req.Phone,
		ParentName:     req.ParentName,
		ParentPhone:    req.ParentPhone,
		EnrollmentDate: req.EnrollmentDate,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTrx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.students.WithTrx(tx).Create(ctx, student)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrUserExists
		}
		return nil, err
	}

	student.User = user

	s.log.Info("student created",
		zap.String("student_id", student.ID.String()),
		zap.String("user_id", user.ID.String()),
	)

	detail, err := s.withClasses(ctx, student)
	if err != nil {
		return nil, err
	}
	return &domain.CreateStudentResult{
		Student:      detail,
		TempPassword: tempPassword,
	}, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateStudentRequest) (*domain.StudentDetail, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	userUpdates := map[string]any{}
	if req.FirstName != nil {
		userUpdates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		userUpdates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		userUpdates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	studentUpdates := map[string]any{"updated_at": now}
	if req.BirthDate != nil {
		studentUpdates["birth_date"] = *req.BirthDate
	}
	if req.Address != nil {
		studentUpdates["address"] = *req.Address
	}
	if req.Phone != nil {
		studentUpdates["phone"] = *req.Phone
	}
	if req.ParentName != nil {
		studentUpdates["parent_name"] = *req.ParentName
	}
	if req.ParentPhone != nil {
		studentUpdates["parent_phone"] = *req.ParentPhone
	}
	if req.EnrollmentDate != nil {
		studentUpdates["enrollment_date"] = *req.EnrollmentDate
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			userUpdates["updated_at"] = now
			if err := tx.Model(&authdomain.User{}).Where("id = ?", current.UserID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.Student{}).Where("id = ?", id).Updates(studentUpdates).Error
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrUserExists
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) SetClasses(ctx context.Context, id snowflake.ID, classIDs []snowflake.ID) (*domain.StudentDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	// Unknown class ids are dropped rather than rejected.
	var valid []snowflake.ID
	if len(classIDs) > 0 {
		if err := s.db.WithContext(ctx).Model(&classdomain.Class{}).
			Where("id IN ?", classIDs).
			Pluck("id", &valid).Error; err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("student_id = ?", id)
		if len(valid) > 0 {
			del = del.Where("class_id NOT IN ?", valid)
		}
		if err := del.Delete(&classdomain.Enrollment{}).Error; err != nil {
			return err
		}

		for _, classID := range valid {
			enrollment := &classdomain.Enrollment{
				ID:        s.genID.Generate(),
				ClassID:   classID,
				StudentID: id,
				CreatedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(enrollment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.billing.EnsureForStudent(ctx, id); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) AddClass(ctx context.Context, id, classID snowflake.ID) (*domain.StudentDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.classExists(ctx, classID); err != nil {
		return nil, err
	}

	enrollment := &classdomain.Enrollment{
		ID:        s.genID.Generate(),
		ClassID:   classID,
		StudentID: id,
		CreatedAt: s.clock.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment).Error
	if err != nil {
		return nil, err
	}

	if _, err := s.billing.EnsureForStudent(ctx, id); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) RemoveClass(ctx context.Context, id, classID snowflake.ID) (*domain.StudentDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", id, classID).
		Delete(&classdomain.Enrollment{}).Error
	if err != nil {
		return nil, err
	}

	// Already billed items survive the removal; the ensure run only adds.
	if _, err := s.billing.EnsureForStudent(ctx, id); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) SetPriceOverride(ctx context.Context, id, classID snowflake.ID, priceCents int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.classExists(ctx, classID); err != nil {
		return err
	}
	if priceCents < 0 {
		return billingdomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	override := &billingdomain.PriceOverride{
		ID:         s.genID.Generate(),
		StudentID:  id,
		ClassID:    classID,
		PriceCents: priceCents,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "class_id"}},
			DoUpdates: clause.Assignments(map[string]any{"price_cents": priceCents, "updated_at": now}),
		}).
		Create(override).Error
}

func (s *Service) ClearPriceOverride(ctx context.Context, id, classID snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", id, classID).
		Delete(&billingdomain.PriceOverride{}).Error
}

func (s *Service) withClasses(ctx context.Context, student *domain.Student) (*domain.StudentDetail, error) {
	var classes []domain.ClassSummary
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.id, c.name, c.monthly_price_cents
		FROM class_students cs
		JOIN classes c ON c.id = cs.class_id
		WHERE cs.student_id = ?
		ORDER BY cs.id ASC
	`, student.ID).Scan(&classes).Error
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []domain.ClassSummary{}
	}

	var total int64
	for _, class := range classes {
		if class.MonthlyPriceCents != nil {
			total += *class.MonthlyPriceCents
		}
	}

	return &domain.StudentDetail{
		Student:           *student,
		Classes:           classes,
		MonthlyTotalCents: total,
	}, nil
}

func (s *Service) classExists(ctx context.Context, id snowflake.ID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&classdomain.Class{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrClassNotFound
	}
	return nil
}
