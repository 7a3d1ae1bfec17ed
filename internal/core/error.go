package core

// Error codes
const (
	ErrEntryNotFound     = "ENTRY_NOT_FOUND"
	ErrInvalidLine       = "INVALID_LINE"
	ErrInvalidMove       = "INVALID_MOVE"
	ErrInvalidResponse   = "INVALID_RESPONSE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrForbidden         = "FORBIDDEN"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
