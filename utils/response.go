package utils

// APIResponse is the envelope every handler returns. Code carries the
// machine-readable error kind so clients can tell the conflict flavors apart
// without parsing messages.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

func ErrorResponseWithCode(code, message string) APIResponse {
	return APIResponse{Success: false, Code: code, Message: message}
}
