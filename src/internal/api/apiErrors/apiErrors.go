package apiErrors

import "fmt"

type ErrorCode string

const (
	Validation    ErrorCode = "VALIDATION"
	Unauthorized  ErrorCode = "UNAUTHORIZED"
	Forbidden     ErrorCode = "FORBIDDEN"
	NotFound      ErrorCode = "NOT_FOUND"
	Conflict      ErrorCode = "CONFLICT"
	InternalError ErrorCode = "INTERNAL_ERROR"
)

type APIError struct {
	Code    ErrorCode
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
