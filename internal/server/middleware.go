package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	staffdomain "github.com/expediterhq/expediter/internal/staff/domain"
)

const (
	HeaderStaff        = "X-Staff-ID"
	contextIdentityKey = "staff_identity"
)

// StaffRequired resolves the calling staff member from the X-Staff-ID header
// and stores the identity on the request context. Requests without a
// resolvable staff id never reach a handler.
func (s *Server) StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderStaff))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.staffSvc.Resolve(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, staffdomain.ErrNotFound) || errors.Is(err, staffdomain.ErrInvalidID) {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(contextIdentityKey, identity)
		c.Next()
	}
}

// RequirePermission gates a route on the caller's role having the given
// object/action grant. StaffRequired must run first.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), identity, object, action); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()
	}
}

func identityFrom(c *gin.Context) (staffdomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return staffdomain.Identity{}, false
	}
	identity, ok := value.(staffdomain.Identity)
	return identity, ok
}

// RequestLogger emits one access line per request. Health and metrics
// scrapes are skipped to keep the log readable.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	access := log.Named("http.access")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if identity, ok := identityFrom(c); ok {
			fields = append(fields, zap.String("staff_id", identity.ID.String()))
		}

		if c.Writer.Status() >= 500 {
			access.Error("request", fields...)
			return
		}
		access.Info("request", fields...)
	}
}
