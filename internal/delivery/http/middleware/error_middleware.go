package middleware

import (
	"errors"
	"net/http"

	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"request_id", response.RequestID(c),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			if len(appErr.Fields) > 0 {
				response.Invalid(c, appErr.Code, appErr.Message, appErr.Fields, nil)
				return
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Internal details stay in the server log.
		logger.Log.Error("Internal Server Error", "request_id", response.RequestID(c), "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
