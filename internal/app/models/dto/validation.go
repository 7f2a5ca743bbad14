package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// fieldMessages holds the Bulgarian message for a "field.tag" pair. The admin
// panel shows these verbatim next to the input.
var fieldMessages = map[string]string{
	"title.required":       "Заглавието е задължително",
	"title.max":            "Заглавието не може да надвишава 200 символа",
	"content.required":     "Съдържанието е задължително",
	"imageUrl.url":         "Невалиден URL адрес на изображението",
	"publishedAt.datetime": "Невалидна дата на публикуване",
	"status.oneof":         "Статусът трябва да бъде DRAFT или PUBLISHED",

	"firstName.required": "Името е задължително",
	"lastName.required":  "Фамилията е задължителна",
	"position.required":  "Длъжността е задължителна",
	"photoUrl.url":       "Невалиден URL адрес на снимката",
	"displayOrder.min":   "Редът на показване трябва да е положително число",

	"email.required":    "Имейлът е задължителен",
	"email.email":       "Невалиден имейл адрес",
	"password.required": "Паролата е задължителна",
	"password.min":      "Паролата трябва да е поне 8 символа",
	"role.required":     "Ролята е задължителна",
	"role.oneof":        "Ролята трябва да бъде ADMIN или DEVELOPER",

	"refreshToken.required": "Refresh токенът е задължителен",
}

// FieldMessage returns the user-facing message for a failed rule on a JSON field.
func FieldMessage(field, tag, param string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	switch tag {
	case "required":
		return fmt.Sprintf("Полето %s е задължително", field)
	case "max":
		return fmt.Sprintf("Полето %s не може да надвишава %s символа", field, param)
	case "min":
		return fmt.Sprintf("Полето %s трябва да е поне %s", field, param)
	case "oneof":
		return fmt.Sprintf("Полето %s трябва да бъде едно от: %s", field, param)
	default:
		return fmt.Sprintf("Невалидна стойност за полето %s", field)
	}
}

// HandleValidationError converts a binding error into an ErrorDetail. Field
// names are the JSON tag names once the gin validator is configured with
// middleware.RegisterValidatorTagNames.
func HandleValidationError(err error) *ErrorDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return NewErrorDetail(ErrorCodeValidationFailed, MsgInvalidData)
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: FieldMessage(fe.Field(), fe.Tag(), fe.Param()),
		})
	}

	return NewErrorDetail(ErrorCodeValidationFailed, fields[0].Message).WithDetails(fields)
}
