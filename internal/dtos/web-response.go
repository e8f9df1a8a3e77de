package dtos

import app_error "github.com/xenn00/collab-hub/internal/errors"

type Response[T any] struct {
	Message   string         `json:"message"`
	Data      T              `json:"data"`
	RequestID string         `json:"request_id,omitempty"`
	Errors    *ErrorResponse `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorEnvelope wraps err in the response shape every REST route answers with.
func ErrorEnvelope(err *app_error.AppError, requestID string) Response[any] {
	return Response[any]{
		Message:   "Error occur",
		RequestID: requestID,
		Errors: &ErrorResponse{
			Code:    err.Code,
			Message: err.Message,
			Field:   err.Field,
		},
	}
}
