package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxProfile extracts the profile identity injected by the Auth middleware
// and fast-fails before any service call: a token without a profile_id claim
// is structurally valid but operationally unusable.
func ctxProfile(c echo.Context) (string, error) {
	profileID, _ := c.Get("profile_id").(string)
	if profileID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing profile identity")
	}
	return profileID, nil
}
