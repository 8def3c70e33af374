package rest

import (
	"net/http"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
)

// Stable error labels returned to bots. The label is machine-matched by
// clients; the human explanation goes in detail.
const (
	ErrValidation     = "validation_error"
	ErrAuthentication = "authentication_error"
	ErrJobNotFound    = "job_not_found"
	ErrJobNotLocked   = "job_not_locked"
	ErrLockExpired    = "lock_expired"
	ErrNotAssigned    = "not_assigned"
	ErrIllegal        = "illegal_transition"
	ErrInternal       = "internal_error"
)

// Response is the uniform envelope for every API reply.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// SuccessResp wraps a payload in the envelope.
func SuccessResp(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// ErrorResp builds an error envelope.
func ErrorResp(label, detail string) Response {
	return Response{Success: false, Error: label, Detail: detail}
}

// StatusOf maps an internal error code to the HTTP status and error label
// the wire contract promises.
func StatusOf(code int) (int, string) {
	switch code {
	case errors.RequestParameterInvalid, errors.RequestDataExists, errors.InvalidDataError:
		return http.StatusBadRequest, ErrValidation
	case errors.AuthFailed:
		return http.StatusUnauthorized, ErrAuthentication
	case errors.PermissionDeny:
		return http.StatusForbidden, ErrAuthentication
	case errors.RequestDataNotExisted:
		return http.StatusNotFound, ErrJobNotFound
	case errors.CodeJobNotLocked:
		return http.StatusBadRequest, ErrJobNotLocked
	case errors.CodeLeaseExpired:
		return http.StatusBadRequest, ErrLockExpired
	case errors.CodeNotAssigned:
		return http.StatusForbidden, ErrNotAssigned
	case errors.CodeIllegalTransition:
		return http.StatusBadRequest, ErrIllegal
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}
