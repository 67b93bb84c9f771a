package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"whisper-web/internal/api/errors"
)

// ValidateForm binds a multipart or urlencoded form into req and reports
// tag violations as a validation error with per-field details.
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return bindingError(err, "form")
	}
	return nil
}

// ValidateQuery validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err, "query")
	}
	return nil
}

func bindingError(err error, source string) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewTooLargeError(maxBytesErr.Limit)
	}

	validationErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return errors.NewBadRequestError("invalid " + source + " parameters")
	}

	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())

		switch fieldError.Tag() {
		case "required":
			validationErrors[field] = "is required"
		case "oneof":
			validationErrors[field] = "must be one of the allowed values"
		default:
			validationErrors[field] = "is invalid"
		}
	}

	return errors.NewValidationError("Validation failed", validationErrors)
}
