package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
)

var registerTagNamesOnce sync.Once

// RegisterValidatorTagNames makes gin's validator report JSON (or form) tag
// names instead of Go field names, so error details match the request body.
func RegisterValidatorTagNames() {
	registerTagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonTagName)
	})
}

func jsonTagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// HandleBindingError writes the response for a failed ShouldBind call. Rule
// violations become VALIDATION_ERROR with per-field details. Malformed bodies
// are reported as invalid data.
func HandleBindingError(c *gin.Context, err error) {
	HandleBindingErrorWithStatus(c, http.StatusBadRequest, err)
}

// HandleBindingErrorWithStatus is HandleBindingError with a custom status.
func HandleBindingErrorWithStatus(c *gin.Context, status int, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		RespondError(c, status, dto.HandleValidationError(err))
		return
	}

	RespondError(c, status, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, dto.MsgInvalidData))
}
