package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quillpost/internal/service"
)

const (
	sessionCookie = "quillpost_session"
	flashCookie   = "quillpost_flash"
	identityKey   = "identity"
)

// identify resolves the session cookie once per request and stores the
// caller's identity in the gin context.
func (h *Handler) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := service.Anonymous
		if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
			user, err := h.sessions.Resolve(c.Request.Context(), token)
			switch {
			case err == nil:
				id = service.Identity{User: user}
			case errors.Is(err, service.ErrInvalidSession):
				h.clearSessionCookie(c)
			default:
				h.log.WithError(err).Warn("resolve session")
			}
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func currentIdentity(c *gin.Context) service.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(service.Identity); ok {
			return id
		}
	}
	return service.Anonymous
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlash queues a one-shot message for the next rendered page.
func (h *Handler) setFlash(c *gin.Context, msg string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(msg)
}
