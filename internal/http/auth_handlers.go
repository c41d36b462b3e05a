package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"quillpost/internal/domain"
	"quillpost/internal/service"
)

const (
	msgEmailTaken         = "Email already registered, please login instead."
	msgInvalidCredentials = "Credentials are invalid. Please try again."
)

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "register.html", gin.H{
			"Title":  "Register",
			"Form":   map[string]string{"name": form.Name, "email": form.Email},
			"Errors": fieldErrors(err),
		})
		return
	}

	user, err := h.users.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		h.setFlash(c, msgEmailTaken)
		redirect(c, "/login")
		return
	case errors.Is(err, service.ErrInvalidRegistration):
		h.render(c, http.StatusUnprocessableEntity, "register.html", gin.H{
			"Title":  "Register",
			"Form":   map[string]string{"name": form.Name, "email": form.Email},
			"Errors": map[string]string{"form": "Please fill in every field."},
		})
		return
	case err != nil:
		h.serverError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	redirect(c, "/")
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log In"})
}

func (h *Handler) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "login.html", gin.H{
			"Title":  "Log In",
			"Form":   map[string]string{"email": form.Email},
			"Errors": fieldErrors(err),
		})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Log In",
			"Form":  map[string]string{"email": form.Email},
			"Flash": msgInvalidCredentials,
		})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	if !h.startSession(c, user) {
		return
	}
	redirect(c, "/")
}

func (h *Handler) startSession(c *gin.Context, user *domain.User) bool {
	token, expiresAt, err := h.sessions.Create(c.Request.Context(), user)
	if err != nil {
		h.serverError(c, err)
		return false
	}
	h.setSessionCookie(c, token, expiresAt)
	return true
}

func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.log.WithError(err).Warn("destroy session")
		}
	}
	h.clearSessionCookie(c)
	redirect(c, "/")
}

// listUsers is a plain text debug listing of every account.
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	var b strings.Builder
	for _, u := range users {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	c.String(http.StatusOK, "%s", b.String())
}
