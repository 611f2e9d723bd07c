package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"minimart/internal/auth"
	apperrors "minimart/internal/errors"
	"minimart/internal/model"
)

// parseAndCheckToken verifies the access token's signature and expiry, then
// consults the ledger so tokens revoked on re-authentication are rejected.
func parseAndCheckToken(jwtService *auth.JWTService, ledger auth.TokenLedgerInterface) func(c echo.Context, raw string) (interface{}, error) {
	return func(c echo.Context, raw string) (interface{}, error) {
		claims, err := jwtService.ValidateToken(raw)
		if err != nil {
			return nil, err
		}

		current, err := ledger.IsCurrent(c.Request().Context(), raw)
		if err != nil {
			return nil, err
		}
		if !current {
			return nil, apperrors.ErrInvalidToken
		}

		return claims, nil
	}
}

// identity copies the verified claims into plain context keys for handlers.
func identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set("user_id", claims.UserID)
			c.Set("role", string(claims.Role))
			return next(c)
		}
	}
}

// requireRole rejects requests whose token role is not in the allowed set.
func requireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: "forbidden",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
