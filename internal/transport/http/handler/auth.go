package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/app"
	"taskmanager/internal/pkg/metrics"
	"taskmanager/internal/pkg/ratelimit"
	"taskmanager/internal/session"
	"taskmanager/internal/transport/http/flash"
	"taskmanager/internal/transport/http/middleware"
)

const (
	MsgLoggedIn           = "Logged in successfully."
	MsgInvalidLogin       = "Invalid username or password."
	MsgTooManyAttempts    = "Too many login attempts. Please try again later."
	MsgRegistered         = "Account created successfully! You can now log in."
	MsgLoggedOut          = "You have been logged out."
	MsgSomethingWentWrong = "Something went wrong. Please try again."
)

type CookieOptions struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService *app.AuthService
	sessions    *session.Manager
	limiter     *ratelimit.Store
	metrics     *metrics.Metrics
	cookie      CookieOptions
	logger      *slog.Logger
}

func NewAuthHandler(
	authService *app.AuthService,
	sessions *session.Manager,
	limiter *ratelimit.Store,
	m *metrics.Metrics,
	cookie CookieOptions,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		limiter:     limiter,
		metrics:     m,
		cookie:      cookie,
		logger:      logger,
	}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	data := newPage(c)
	data.Next = nextFrom(c)
	c.HTML(http.StatusOK, "login", data)
}

func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	username := c.PostForm("username")
	renderFailure := func(status int, message string) {
		data := newPage(c, flash.Message{Category: flash.Danger, Message: message})
		data.Form = map[string]string{"username": username}
		data.Next = nextFrom(c)
		c.HTML(status, "login", data)
	}

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		h.metrics.AuthEvent("login", "rate_limited")
		h.logger.Warn("login rate limited", slog.String("client_ip", c.ClientIP()))
		renderFailure(http.StatusTooManyRequests, MsgTooManyAttempts)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: username,
		Password: c.PostForm("password"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredential) {
			h.metrics.AuthEvent("login", metrics.ResultInvalid)
			h.logger.Info("login rejected", slog.String("username", strings.TrimSpace(username)))
			renderFailure(http.StatusOK, MsgInvalidLogin)
			return
		}
		h.metrics.AuthEvent("login", metrics.ResultError)
		h.logger.Error("login failed", slog.String("error", err.Error()))
		renderFailure(http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}

	remember := c.PostForm("remember") != ""
	issued, err := h.sessions.Issue(c.Request.Context(), user.ID, remember)
	if err != nil {
		h.metrics.AuthEvent("login", metrics.ResultError)
		h.logger.Error("issue session failed", slog.Uint64("user_id", uint64(user.ID)), slog.String("error", err.Error()))
		renderFailure(http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}

	h.setSessionCookie(c, issued.Token, issued.MaxAge)
	h.metrics.AuthEvent("login", metrics.ResultOK)
	h.logger.Info("user logged in", slog.Uint64("user_id", uint64(user.ID)), slog.Bool("remember", remember))

	flash.Add(c, flash.Success, MsgLoggedIn)
	c.Redirect(http.StatusFound, safeNext(nextFrom(c)))
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register", newPage(c))
}

func (h *AuthHandler) Register(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	input := app.RegisterInput{
		Username:        c.PostForm("username"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}
	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		message := MsgSomethingWentWrong
		status := http.StatusInternalServerError
		if ve, ok := app.IsValidation(err); ok {
			message = ve.Message
			status = http.StatusOK
			h.metrics.AuthEvent("register", metrics.ResultInvalid)
		} else {
			h.metrics.AuthEvent("register", metrics.ResultError)
			h.logger.Error("register failed", slog.String("error", err.Error()))
		}

		data := newPage(c, flash.Message{Category: flash.Danger, Message: message})
		data.Form = map[string]string{"username": input.Username, "email": input.Email}
		c.HTML(status, "register", data)
		return
	}

	h.metrics.AuthEvent("register", metrics.ResultOK)
	h.logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)), slog.String("username", user.Username))
	flash.Add(c, flash.Success, MsgRegistered)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// Logout always clears the cookie, even when the server-side revoke fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), revokeTimeout)
	defer cancel()
	if err := h.sessions.Revoke(ctx, middleware.SessionToken(c)); err != nil {
		h.logger.Warn("revoke session failed", slog.String("error", err.Error()))
	}

	h.clearSessionCookie(c)
	h.metrics.AuthEvent("logout", metrics.ResultOK)
	if user != nil {
		h.logger.Info("user logged out", slog.Uint64("user_id", uint64(user.ID)))
	}

	flash.Add(c, flash.Info, MsgLoggedOut)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

func nextFrom(c *gin.Context) string {
	if next := c.Query("next"); next != "" {
		return next
	}
	return c.PostForm("next")
}

// safeNext only allows redirects to paths on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
