package dto

// ErrorCode is the machine-readable "error" field of a failed response.
type ErrorCode string

// Authentication errors
const (
	ErrorCodeAuth           ErrorCode = "ERROR_AUTH"
	ErrorCodeInvalidToken   ErrorCode = "ERROR_INVALID_TOKEN"
	ErrorCodeUnauthorized   ErrorCode = "ERROR_UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "ERROR_FORBIDDEN"
	ErrorCodeRateLimit      ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeNotImplemented ErrorCode = "ERROR_NOT_IMPLEMENTED"
)

// Resource errors
const (
	ErrorCodeNewsNotFound    ErrorCode = "ERROR_NEWS_NOT_FOUND"
	ErrorCodeNewsCreate      ErrorCode = "ERROR_NEWS_CREATE"
	ErrorCodeNewsUpdate      ErrorCode = "ERROR_NEWS_UPDATE"
	ErrorCodeNewsDelete      ErrorCode = "ERROR_NEWS_DELETE"
	ErrorCodeNewsGetAll      ErrorCode = "ERROR_NEWS_GET_ALL"
	ErrorCodeTeacherNotFound ErrorCode = "ERROR_TEACHER_NOT_FOUND"
	ErrorCodeTeacherCreate   ErrorCode = "ERROR_TEACHER_CREATE"
	ErrorCodeTeacherUpdate   ErrorCode = "ERROR_TEACHER_UPDATE"
	ErrorCodeTeacherDelete   ErrorCode = "ERROR_TEACHER_DELETE"
	ErrorCodeTeacherGetAll   ErrorCode = "ERROR_TEACHER_GET_ALL"
	ErrorCodeUserNotFound    ErrorCode = "ERROR_USER_NOT_FOUND"
	ErrorCodeEmailExists     ErrorCode = "ERROR_EMAIL_EXISTS"
	ErrorCodeNotFound        ErrorCode = "ERROR_NOT_FOUND"
	ErrorCodeConflict        ErrorCode = "ERROR_CONFLICT"
)

// Upload errors
const (
	ErrorCodeNoFile           ErrorCode = "ERROR_NO_FILE"
	ErrorCodeInvalidFileType  ErrorCode = "ERROR_INVALID_FILE_TYPE"
	ErrorCodeFileSizeExceeded ErrorCode = "ERROR_FILE_SIZE_EXCEEDED"
	ErrorCodeUploadFailed     ErrorCode = "ERROR_UPLOAD_FAILED"
)

// Generic errors
const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_ERROR"
	ErrorCodeBadRequest       ErrorCode = "ERROR_BAD_REQUEST"
	ErrorCodeInternalServer   ErrorCode = "SERVER_ERROR"
)

// User-facing messages. The site is Bulgarian, so are its messages.
const (
	MsgInvalidCredentials = "Невалиден имейл или парола"
	MsgRateLimitExceeded  = "Твърде много опити. Опитайте отново след 15 минути."
	MsgInvalidRefresh     = "Невалиден или изтекъл токен"
	MsgSessionExpired     = "Сесията е изтекла. Моля, влезте отново."
	MsgUnauthorized       = "Неоторизиран достъп"
	MsgForbidden          = "Нямате права за това действие"
	MsgNotImplemented     = "Функционалността не е налична"
	MsgInvalidData        = "Невалидни данни"
	MsgInvalidID          = "Невалиден идентификатор"
	MsgInternalError      = "Вътрешна грешка на сървъра"
	MsgNotFound           = "Не е намерено"
	MsgConflict           = "Записът вече съществува"

	MsgNewsNotFound    = "Новината не е намерена"
	MsgNewsDeleted     = "Новината е изтрита успешно"
	MsgTeacherNotFound = "Учителят не е намерен"
	MsgTeacherDeleted  = "Учителят е изтрит успешно"
	MsgUserNotFound    = "Потребителят не е намерен"
	MsgUserDeleted     = "Потребителят е изтрит успешно"
	MsgEmailExists     = "Имейлът вече се използва"

	MsgNoFile           = "Моля, изберете файл за качване"
	MsgInvalidFileType  = "Невалиден тип файл. Позволени са: JPEG, PNG, GIF, WebP"
	MsgFileSizeExceeded = "Файлът е твърде голям. Максимален размер: 10MB"
	MsgUploadFailed     = "Грешка при качване на изображението. Моля, опитайте отново."
)

// ErrorDetail describes a failure before it is rendered.
type ErrorDetail struct {
	Code    ErrorCode
	Message string
	Field   string
	Details interface{}
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Message string      `json:"message" example:"Невалиден имейл или парола"`
	Error   ErrorCode   `json:"error" example:"ERROR_AUTH"`
	Details interface{} `json:"details,omitempty"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:    code,
		Message: message,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse renders an ErrorDetail as the response body.
func NewErrorResponse(detail *ErrorDetail) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Message: detail.Message,
		Error:   detail.Code,
		Details: detail.Details,
	}
	if detail.Field != "" && resp.Details == nil {
		resp.Details = []FieldError{{Field: detail.Field, Message: detail.Message}}
	}
	return resp
}

// FieldError is one failed field of a validation error.
type FieldError struct {
	Field   string `json:"field" example:"title"`
	Message string `json:"message" example:"Заглавието е задължително"`
}
