package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ContextOperatorID = "operator_id"
	ContextRole       = "role"
)

// OperatorID returns the authenticated operator, if any.
func OperatorID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextOperatorID).(uint64)
	return id, ok && id != 0
}

// operatorKey is the operator id as used in cache and rate-limit keys, or
// "anon" without an authenticated operator.
func operatorKey(c echo.Context) string {
	if id, ok := OperatorID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
