package utils

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ExtractUserInfo pulls the authenticated identity the JWT middleware put
// into the echo context. Handlers trust these values; the core never checks
// credentials itself.
func ExtractUserInfo(c echo.Context) (userID string, role string, err error) {
	id, ok := c.Get("userID").(string)
	if !ok || id == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated identity")
	}
	r, _ := c.Get("userRole").(string)
	return id, r, nil
}

// GetPageLimit reads ?page= and ?limit= query params with sane defaults.
func GetPageLimit(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
