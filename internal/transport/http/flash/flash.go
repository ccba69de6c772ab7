// Package flash carries one-shot page messages across a redirect in a short-lived cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "flash"
	pendingKey = "flash.pending"
	secureKey  = "flash.secure"
	maxAge     = 60

	Success = "success"
	Info    = "info"
	Danger  = "danger"
	Warning = "warning"
)

type Message struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Secure marks flash cookies written during the request with the Secure attribute.
func Secure(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(secureKey, secure)
		c.Next()
	}
}

// Add queues a message for the next rendered page.
func Add(c *gin.Context, category, message string) {
	pending := pendingFrom(c)
	pending = append(pending, Message{Category: category, Message: message})
	c.Set(pendingKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, base64.RawURLEncoding.EncodeToString(raw), maxAge, "/", "", c.GetBool(secureKey), true)
}

// Consume returns the queued messages from the request cookie and clears it.
func Consume(c *gin.Context) []Message {
	value, err := c.Cookie(CookieName)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", c.GetBool(secureKey), true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}

func pendingFrom(c *gin.Context) []Message {
	if v, ok := c.Get(pendingKey); ok {
		if pending, ok := v.([]Message); ok {
			return pending
		}
	}
	return nil
}
