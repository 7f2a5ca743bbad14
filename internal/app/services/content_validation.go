package services

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/helpers"
)

var validate = validator.New()

// requiredText trims value and checks it is non-empty and at most max runes.
func requiredText(field, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperrors.NewValidationError(field, dto.FieldMessage(field, "required", ""))
	}
	if max > 0 && utf8.RuneCountInString(v) > max {
		return "", apperrors.NewValidationError(field, dto.FieldMessage(field, "max", strconv.Itoa(max)))
	}
	return v, nil
}

// optionalURL returns nil for a missing or empty URL.
func optionalURL(field string, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil, nil
	}
	if err := validate.Var(v, "url"); err != nil {
		return nil, apperrors.NewValidationError(field, dto.FieldMessage(field, "url", ""))
	}
	return &v, nil
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// optionalTimestamp parses an RFC3339 value. Missing or blank is nil.
func optionalTimestamp(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := helpers.ParseTimestamp(strings.TrimSpace(*value))
	if err != nil {
		return nil, apperrors.NewValidationError(field, dto.FieldMessage(field, "datetime", ""))
	}
	t = t.UTC()
	return &t, nil
}

// resolveStatus defaults an empty status to DRAFT.
func resolveStatus(status models.ContentStatus) (models.ContentStatus, error) {
	if status == "" {
		return models.StatusDraft, nil
	}
	if !status.Valid() {
		return "", apperrors.NewValidationError("status", dto.FieldMessage("status", "oneof", ""))
	}
	return status, nil
}
