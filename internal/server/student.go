package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
)

// Create and update payloads accept the user fields either flat or under
// a nested "user" object; the nested shape wins when both are present.
type userFields struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type userPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

type createStudentPayload struct {
	userFields
	User *userFields `json:"user"`

	BirthDate      *time.Time `json:"birthDate"`
	Address        *string    `json:"address"`
	Phone          *string    `json:"phone"`
	ParentName     *string    `json:"parentName"`
	ParentPhone    *string    `json:"parentPhone"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
}

func (p createStudentPayload) user() userFields {
	if p.User != nil {
		return *p.User
	}
	return p.userFields
}

type updateStudentPayload struct {
	userPatch
	User *userPatch `json:"user"`

	BirthDate      *time.Time `json:"birthDate"`
	Address        *string    `json:"address"`
	Phone          *string    `json:"phone"`
	ParentName     *string    `json:"parentName"`
	ParentPhone    *string    `json:"parentPhone"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
}

func (p updateStudentPayload) user() userPatch {
	if p.User != nil {
		return *p.User
	}
	return p.userPatch
}

func (s *Server) ListStudents(c *gin.Context) {
	students, err := s.studentSvc.List(c.Request.Context(), studentdomain.ListStudentsRequest{
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": students})
}

func (s *Server) GetStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := s.studentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) CreateStudent(c *gin.Context) {
	var payload createStudentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	user := payload.user()
	result, err := s.studentSvc.Create(c.Request.Context(), studentdomain.CreateStudentRequest{
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Password:       user.Password,
		BirthDate:      payload.BirthDate,
		Address:        payload.Address,
		Phone:          payload.Phone,
		ParentName:     payload.ParentName,
		ParentPhone:    payload.ParentPhone,
		EnrollmentDate: payload.EnrollmentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"data": result.Student}
	if result.TempPassword != "" {
		resp["tempPassword"] = result.TempPassword
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload updateStudentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	user := payload.user()
	student, err := s.studentSvc.Update(c.Request.Context(), id, studentdomain.UpdateStudentRequest{
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		BirthDate:      payload.BirthDate,
		Address:        payload.Address,
		Phone:          payload.Phone,
		ParentName:     payload.ParentName,
		ParentPhone:    payload.ParentPhone,
		EnrollmentDate: payload.EnrollmentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) SetStudentClasses(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload struct {
		ClassIDs []snowflake.ID `json:"classIds"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, newValidationError("classIds", "invalid_request", "invalid request"))
		return
	}

	student, err := s.studentSvc.SetClasses(c.Request.Context(), id, payload.ClassIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) AddStudentClass(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	classID, ok := parseIDParam(c, "classId")
	if !ok {
		return
	}

	student, err := s.studentSvc.AddClass(c.Request.Context(), id, classID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) RemoveStudentClass(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	classID, ok := parseIDParam(c, "classId")
	if !ok {
		return
	}

	student, err := s.studentSvc.RemoveClass(c.Request.Context(), id, classID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": student})
}

func (s *Server) SetPriceOverride(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	classID, ok := parseIDParam(c, "classId")
	if !ok {
		return
	}

	var payload struct {
		PriceCents *int64 `json:"priceCents"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.PriceCents == nil {
		AbortWithError(c, newValidationError("priceCents", "invalid_request", "invalid request"))
		return
	}

	if err := s.studentSvc.SetPriceOverride(c.Request.Context(), id, classID, *payload.PriceCents); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"studentId": id, "classId": classID, "priceCents": *payload.PriceCents}})
}

func (s *Server) ClearPriceOverride(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	classID, ok := parseIDParam(c, "classId")
	if !ok {
		return
	}

	if err := s.studentSvc.ClearPriceOverride(c.Request.Context(), id, classID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
