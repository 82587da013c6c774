package errors

// ErrorResponse is the JSON structure returned to clients following RFC 7807.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Kind      Kind           `json:"kind"`
	Code      ErrorCode      `json:"code,omitempty"`
	Message   string         `json:"message"`
	Field     string         `json:"field,omitempty"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
// Cause and Trace are deliberately left out.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Kind:      e.Kind,
			Code:      e.Code,
			Message:   e.Message,
			Field:     e.Field,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}
