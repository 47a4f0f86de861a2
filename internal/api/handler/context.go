package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// ctxPrincipal extracts the identity the Auth middleware injected. A request
// reaching a protected handler without a subject means the middleware did not
// run or the token carried no identity; reject with 401 either way.
func ctxPrincipal(c echo.Context) (userID string, role domain.Role, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	roleStr, _ := c.Get("role").(string)
	return userID, domain.Role(roleStr), nil
}
