package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
)

func (s *Server) ListClasses(c *gin.Context) {
	classes, err := s.classSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": classes})
}

func (s *Server) GetClass(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	class, err := s.classSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": class})
}

func (s *Server) CreateClass(c *gin.Context) {
	var req classdomain.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	class, err := s.classSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": class})
}

func (s *Server) AddClassStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(c, "studentId")
	if !ok {
		return
	}

	class, err := s.classSvc.AddStudent(c.Request.Context(), id, studentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": class})
}

func (s *Server) AssignClassTeacher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	teacherID, ok := parseIDParam(c, "teacherId")
	if !ok {
		return
	}

	class, err := s.classSvc.AssignTeacher(c.Request.Context(), id, teacherID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": class})
}
