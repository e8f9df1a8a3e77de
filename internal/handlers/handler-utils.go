package handlers

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/dtos"
	app_error "github.com/xenn00/collab-hub/internal/errors"
	"github.com/xenn00/collab-hub/internal/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			reqID := middleware.RequestIDFromContext(r.Context())
			log.Error().Err(err).Str("field", err.Field).Msg(fmt.Sprintf("error occur, request id: %s", reqID))
			WriteJSON(w, err.Code, dtos.ErrorEnvelope(err, reqID))
		}
	}
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}

// Respond writes data in the standard envelope.
func Respond[T any](w http.ResponseWriter, r *http.Request, status int, message string, data T) {
	WriteJSON(w, status, CreateResponse(message, data, middleware.RequestIDFromContext(r.Context())))
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v any) *app_error.AppError {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}
	return nil
}

// UserID returns the caller authenticated by middleware.JWTAuth.
func UserID(r *http.Request) (string, *app_error.AppError) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", app_error.NewAppError(http.StatusUnauthorized, "user id is not found in context", "context")
	}
	return userID, nil
}
