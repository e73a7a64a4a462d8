package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	menudomain "github.com/expediterhq/expediter/internal/menu/domain"
)

type createMenuItemRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func (s *Server) CreateMenuItem(c *gin.Context) {
	var req createMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.menuSvc.Create(c.Request.Context(), menudomain.CreateMenuItemRequest{
		Name:  strings.TrimSpace(req.Name),
		Price: req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListMenuItems(c *gin.Context) {
	resp, err := s.menuSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setAvailabilityRequest struct {
	Available *bool `json:"available"`
}

func (s *Server) SetMenuItemAvailability(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_item_id", "invalid menu item id"))
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.menuSvc.SetAvailability(c.Request.Context(), id, *req.Available); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id.String(), "available": *req.Available}})
}

func isMenuValidationError(err error) bool {
	switch err {
	case menudomain.ErrInvalidName,
		menudomain.ErrInvalidPrice:
		return true
	default:
		return false
	}
}
