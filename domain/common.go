package domain

import "math"

const (
	RoleDonor     = "donor"
	RoleRecipient = "recipient"
	RoleAdmin     = "admin"
)

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageSuccessPing          = "pong"
)

// Actor is the authenticated caller as supplied by the auth middleware.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// MaxPage is the highest page number listing endpoints accept.
const MaxPage = 100000

// PageOffset returns the number of rows before page. It saturates instead of
// overflowing for page numbers that bypassed request validation.
func PageOffset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt32/limit {
		return math.MaxInt32
	}
	return (page - 1) * limit
}

var (
	ErrTokenNotFound = &Error{Kind: KindUnauthorized, Message: "token not found"}
	ErrTokenExpired  = &Error{Kind: KindUnauthorized, Message: "token expired"}
	ErrTokenInvalid  = &Error{Kind: KindUnauthorized, Message: "token invalid"}
)
