package dto

// Success messages used by the response envelope.
const (
	MsgSuccess = "Success"
	MsgCreated = "Successfully create"
)

// APIResponse is the envelope of every successful admin and client response.
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Success"`
	Content interface{} `json:"content"`
}

// NewSuccessResponse wraps content with the default success message.
func NewSuccessResponse(content interface{}) APIResponse {
	return APIResponse{Success: true, Message: MsgSuccess, Content: content}
}

// NewCreatedResponse wraps content for a 201 response.
func NewCreatedResponse(content interface{}) APIResponse {
	return APIResponse{Success: true, Message: MsgCreated, Content: content}
}

// NewMessageResponse is a success envelope with a custom message and no content.
func NewMessageResponse(message string) APIResponse {
	return APIResponse{Success: true, Message: message, Content: nil}
}

// JSend statuses used by the public API.
const (
	JSendSuccess = "success"
	JSendFail    = "fail"
	JSendError   = "error"
)

// JSendResponse is the envelope of the public site API.
type JSendResponse struct {
	Status  string      `json:"status" example:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse is returned by the health probe.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	// Checks lists failed dependencies of a readiness probe.
	Checks map[string]string `json:"checks,omitempty"`
}
