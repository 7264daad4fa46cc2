package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

const guestSessionCookie = "guest_session"

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ownerFromRequest resolves who the cart belongs to. Authenticated callers
// arrive with X-User-ID set by the auth layer in front of this service;
// everyone else gets a guest session cookie, minted on first contact.
func ownerFromRequest(c echo.Context) model.OwnerKey {
	if v := c.Request().Header.Get("X-User-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return model.UserOwner(id)
		}
	}

	cookie, err := c.Cookie(guestSessionCookie)
	if err == nil && cookie.Value != "" {
		return model.SessionOwner(cookie.Value)
	}

	sid := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     guestSessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return model.SessionOwner(sid)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
