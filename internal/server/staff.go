package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

type createStaffRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Server) CreateStaff(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.staffSvc.Create(c.Request.Context(), staffdomain.CreateStaffRequest{
		Username: strings.TrimSpace(req.Username),
		Name:     strings.TrimSpace(req.Name),
		Role:     strings.TrimSpace(req.Role),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListStaff(c *gin.Context) {
	resp, err := s.staffSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isStaffValidationError(err error) bool {
	switch err {
	case staffdomain.ErrInvalidID,
		staffdomain.ErrInvalidUsername,
		staffdomain.ErrInvalidName,
		staffdomain.ErrInvalidRole,
		staffdomain.ErrInvalidPassword:
		return true
	default:
		return false
	}
}
