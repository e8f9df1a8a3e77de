package app_error

import (
	"encoding/json"
	"net/http"
)

// Field values used to classify hub failures.
const (
	FieldAuth        = "auth"
	FieldMembership  = "membership"
	FieldPersistence = "persistence"
	FieldProtocol    = "protocol"
	FieldValidation  = "validation"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

// Unauthenticated refuses a connection attempt or request: missing, invalid or
// expired credentials, or a credential for a user that no longer exists.
func Unauthenticated(msg string) *AppError {
	return NewAppError(http.StatusUnauthorized, msg, FieldAuth)
}

func NotAMember(msg string) *AppError {
	return NewAppError(http.StatusForbidden, msg, FieldMembership)
}

func PersistenceFailure(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg, FieldPersistence)
}

// ProtocolMisuse marks a malformed or unexpected frame. It is reported to the
// sender only and never tears the connection down.
func ProtocolMisuse(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, msg, FieldProtocol)
}

func Invalid(msg string) *AppError {
	return NewAppError(http.StatusBadRequest, msg, FieldValidation)
}
