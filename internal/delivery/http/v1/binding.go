package v1

import (
	"errors"

	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func bindingFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	return validation.FormatValidationErrors(err)
}

// bindJSON decodes the body and reports binding failures as field errors.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if fields := bindingFields(err); fields != nil {
			c.Error(apperror.Unprocessable("Please fix the highlighted fields.", fields))
		} else {
			c.Error(apperror.BadRequest("Invalid request body"))
		}
		return false
	}
	return true
}
