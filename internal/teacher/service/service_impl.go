package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	"github.com/Yassinesbr/support-center/internal/auth/password"
	"github.com/Yassinesbr/support-center/internal/clock"
	"github.com/Yassinesbr/support-center/internal/teacher/domain"
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
	Teachers repository.Repository[domain.Teacher]
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	users    repository.Repository[authdomain.User]
	teachers repository.Repository[domain.Teacher]
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("teacher.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		users:    p.Users,
		teachers: p.Teachers,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListTeachersRequest) ([]*domain.Teacher, error) {
	q := s.db.WithContext(ctx).Model(&domain.Teacher{}).Preload("User")

	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Joins("JOIN users ON users.id = teachers.user_id").
			Where(`LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?
				OR LOWER(users.email) LIKE ? OR LOWER(COALESCE(teachers.subject, '')) LIKE ?
				OR COALESCE(teachers.phone, '') LIKE ?`,
				pattern, pattern, pattern, pattern, pattern)
	}

	var teachers []*domain.Teacher
	if err := q.Order("teachers.id ASC").Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Teacher, error) {
	var teacher domain.Teacher
	err := s.db.WithContext(ctx).Preload("User").First(&teacher, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrTeacherNotFound
		}
		return nil, err
	}
	return &teacher, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateTeacherRequest) (*domain.CreateTeacherResult, error) {
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
		Role:         authdomain.RoleTeacher,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	teacher := &domain.Teacher{
		ID:                   s.genID.Generate(),
		UserID:               user.ID,
		Subject:              req.Subject,
		Phone:                req.Phone,
		Address:              req.Address,
		BirthDate:            req.BirthDate,
		HireDate:             req.HireDate,
		FixedMonthlyPayCents: req.FixedMonthlyPayCents,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTrx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.teachers.WithTrx(tx).Create(ctx, teacher)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrUserExists
		}
		return nil, err
	}

	teacher.User = user

	s.log.Info("teacher created",
		zap.String("teacher_id", teacher.ID.String()),
		zap.String("user_id", user.ID.String()),
	)

	return &domain.CreateTeacherResult{
		Teacher:      teacher,
		TempPassword: tempPassword,
	}, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateTeacherRequest) (*domain.Teacher, error) {
	teacher, err := s.Get(ctx, id)
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

	teacherUpdates := map[string]any{"updated_at": now}
	if req.Subject != nil {
		teacherUpdates["subject"] = *req.Subject
	}
	if req.Phone != nil {
		teacherUpdates["phone"] = *req.Phone
	}
	if req.Address != nil {
		teacherUpdates["address"] = *req.Address
	}
	if req.BirthDate != nil {
		teacherUpdates["birth_date"] = *req.BirthDate
	}
	if req.HireDate != nil {
		teacherUpdates["hire_date"] = *req.HireDate
	}
	if req.FixedMonthlyPayCents != nil {
		teacherUpdates["fixed_monthly_pay_cents"] = *req.FixedMonthlyPayCents
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			userUpdates["updated_at"] = now
			if err := tx.Model(&authdomain.User{}).Where("id = ?", teacher.UserID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		return tx.Model(&domain.Teacher{}).Where("id = ?", id).Updates(teacherUpdates).Error
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrUserExists
		}
		return nil, err
	}

	return s.Get(ctx, id)
}
