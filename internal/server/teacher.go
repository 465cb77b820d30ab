package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
)

type createTeacherPayload struct {
	userFields
	User *userFields `json:"user"`

	Subject              *string    `json:"subject"`
	Phone                *string    `json:"phone"`
	Address              *string    `json:"address"`
	BirthDate            *time.Time `json:"birthDate"`
	HireDate             *time.Time `json:"hireDate"`
	FixedMonthlyPayCents *int64     `json:"fixedMonthlyPayCents"`
}

func (p createTeacherPayload) user() userFields {
	if p.User != nil {
		return *p.User
	}
	return p.userFields
}

type updateTeacherPayload struct {
	userPatch
	User *userPatch `json:"user"`

	Subject              *string    `json:"subject"`
	Phone                *string    `json:"phone"`
	Address              *string    `json:"address"`
	BirthDate            *time.Time `json:"birthDate"`
	HireDate             *time.Time `json:"hireDate"`
	FixedMonthlyPayCents *int64     `json:"fixedMonthlyPayCents"`
}

func (p updateTeacherPayload) user() userPatch {
	if p.User != nil {
		return *p.User
	}
	return p.userPatch
}

func (s *Server) ListTeachers(c *gin.Context) {
	teachers, err := s.teacherSvc.List(c.Request.Context(), teacherdomain.ListTeachersRequest{
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teachers})
}

func (s *Server) GetTeacher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	teacher, err := s.teacherSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teacher})
}

func (s *Server) CreateTeacher(c *gin.Context) {
	var payload createTeacherPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	user := payload.user()
	result, err := s.teacherSvc.Create(c.Request.Context(), teacherdomain.CreateTeacherRequest{
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		Email:                user.Email,
		Password:             user.Password,
		Subject:              payload.Subject,
		Phone:                payload.Phone,
		Address:              payload.Address,
		BirthDate:            payload.BirthDate,
		HireDate:             payload.HireDate,
		FixedMonthlyPayCents: payload.FixedMonthlyPayCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"data": result.Teacher}
	if result.TempPassword != "" {
		resp["tempPassword"] = result.TempPassword
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateTeacher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload updateTeacherPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	user := payload.user()
	teacher, err := s.teacherSvc.Update(c.Request.Context(), id, teacherdomain.UpdateTeacherRequest{
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		Email:                user.Email,
		Subject:              payload.Subject,
		Phone:                payload.Phone,
		Address:              payload.Address,
		BirthDate:            payload.BirthDate,
		HireDate:             payload.HireDate,
		FixedMonthlyPayCents: payload.FixedMonthlyPayCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": teacher})
}
