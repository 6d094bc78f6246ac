package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Err writes the error as a JSON response using the code carried by the
// AppError, wrapping foreign errors as internal.
func Err(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal("unexpected error", err)
	}
	if requestID, exists := c.Get("RequestID"); exists {
		if s, ok := requestID.(string); ok {
			appErr = appErr.WithRequestID(s)
		}
	}
	c.JSON(appErr.Code, appErr)
}

// ErrorHandlerMiddleware assigns every request an ID and converts errors
// collected during handling into a single JSON error response.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("RequestID", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		if len(c.Errors) > 0 {
			Err(c, c.Errors[0].Err)
			c.Abort()
		}
	}
}

// RecoveryMiddleware recovers from panics and responds with a 500.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Get("RequestID")
				requestIDStr, _ := requestID.(string)

				var err *AppError
				switch v := r.(type) {
				case error:
					err = Internal("panic recovered", v).WithRequestID(requestIDStr)
				default:
					err = Internal(fmt.Sprintf("panic recovered: %v", r), nil).WithRequestID(requestIDStr)
				}

				log.Error().Err(err).Msg("panic recovered")

				c.JSON(http.StatusInternalServerError, err)
				c.Abort()
			}
		}()

		c.Next()
	}
}
