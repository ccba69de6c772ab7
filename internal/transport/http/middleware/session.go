package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/app"
	"taskmanager/internal/model"
	"taskmanager/internal/session"
	"taskmanager/internal/transport/http/flash"
	"taskmanager/internal/transport/http/response"
)

const (
	ContextUserKey         = "current_user"
	ContextSessionTokenKey = "session_token"

	LoginPath          = "/auth/login"
	MsgLoginToContinue = "Please log in to access this page."
)

// LoadSession resolves the session cookie to an active user. It never rejects a request;
// RequireAPIUser and RequirePageUser decide what an anonymous caller gets.
func LoadSession(sessions *session.Manager, auth *app.AuthService, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID, err := sessions.Resolve(ctx, token)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidSession) {
				logger.Warn("resolve session failed", slog.String("error", err.Error()))
			}
			c.Next()
			return
		}

		user, err := auth.GetUserByID(ctx, userID)
		if err != nil {
			logger.Error("load session user failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}
		if user != nil {
			c.Set(ContextUserKey, user)
			c.Set(ContextSessionTokenKey, token)
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func SessionToken(c *gin.Context) string {
	return c.GetString(ContextSessionTokenKey)
}

func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			response.Abort(c, http.StatusUnauthorized, response.MsgAuthRequired)
			return
		}
		c.Next()
	}
}

// RequirePageUser sends anonymous visitors to the login page and remembers where they were going.
func RequirePageUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			flash.Add(c, flash.Info, MsgLoginToContinue)
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}
