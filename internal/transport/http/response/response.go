package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta accompanies paginated audit listings.
type Meta struct {
	NextCursor string `json:"next_cursor,omitempty"`
	Total      *int64 `json:"total,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type APIResponse struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
}

func RespondOK(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// RespondError writes an error envelope and records the message on the gin
// context so the request logger picks it up.
func RespondError(c *gin.Context, status int, message string) {
	_ = c.Error(errorMessage(message)).SetType(gin.ErrorTypePrivate)
	c.JSON(status, APIResponse{
		Error: &APIError{Code: errorCode(status), Message: message},
	})
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= 500 {
		return "internal"
	}
	return "error"
}

type errorMessage string

func (e errorMessage) Error() string { return string(e) }
