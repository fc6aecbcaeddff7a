package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "accesshub/internal/errors"
	"accesshub/internal/model"
)

var roleRank = map[string]int{
	model.RoleUser:       1,
	model.RoleAdmin:      2,
	model.RoleSuperAdmin: 3,
}

// RoleAtLeast reports whether role meets or exceeds min. Unknown roles never
// satisfy any requirement.
func RoleAtLeast(role, min string) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	m, ok := roleRank[min]
	if !ok {
		return false
	}
	return r >= m
}

// Policy is a declarative mapping from "METHOD route-path" to the minimum
// role required. Routes not listed require authentication only.
type Policy map[string]string

// DefaultPolicy gates the user-management routes.
var DefaultPolicy = Policy{
	"GET /api/users":         model.RoleAdmin,
	"DELETE /api/users/:id":  model.RoleSuperAdmin,
	"PUT /api/users/profile": model.RoleUser,
}

// MinRole returns the minimum role for the given method and route path.
func (p Policy) MinRole(method, path string) (string, bool) {
	min, ok := p[method+" "+path]
	return min, ok
}

// ClaimsFromContext returns the verified claims attached by the JWT middleware.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get("user").(*Claims)
	return claims, ok
}

// Authorize returns middleware enforcing the policy for the matched route.
// Authentication failures are 401, insufficient role is 403; the two are
// never conflated.
func Authorize(p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrTokenInvalid.Error())
			}
			min, found := p.MinRole(c.Request().Method, c.Path())
			if found && !RoleAtLeast(claims.Role, min) {
				return apperrors.ErrForbidden
			}
			return next(c)
		}
	}
}
