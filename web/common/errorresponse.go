package common

type ErrorResponse struct {
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

func NewTypedErrorResponse(message string, errorType string) *ErrorResponse {
	return &ErrorResponse{
		Message:   message,
		ErrorType: errorType,
	}
}
