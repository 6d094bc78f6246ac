package http

import (
	"github.com/gin-gonic/gin"

	"github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/permission"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requireMediaAccess gates routes that read the external library. Favorites
// and albums live in local storage and stay reachable regardless.
func (s *Service) requireMediaAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := s.gallery.Repository().PermissionState()
		if state != permission.Granted {
			errors.Err(c, errors.PermissionDenied(string(state)))
			c.Abort()
			return
		}
		c.Next()
	}
}
