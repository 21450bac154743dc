package response

import "backend/pkg/apperror"

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorCode  string      `json:"error_code,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a domain error to the standard error envelope, exposing
// the error kind so clients can distinguish stale state from lost races
func FromError(err error) (int, Response) {
	status := apperror.HTTPStatus(err)
	return status, Response{
		Status:     "error",
		StatusCode: status,
		Error:      apperror.UserMessage(err),
		ErrorCode:  string(apperror.KindOf(err)),
	}
}
