package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/model"
	"taskmanager/internal/transport/http/flash"
	"taskmanager/internal/transport/http/middleware"
)

const tasksPath = "/tasks"

// pageData is what every template receives.
type pageData struct {
	User    *model.User
	Flashes []flash.Message
	Form    map[string]string
	Next    string
}

// newPage collects the current user and any flashes left by the previous redirect,
// followed by messages raised while handling this request.
func newPage(c *gin.Context, messages ...flash.Message) pageData {
	data := pageData{Flashes: flash.Consume(c)}
	if user, ok := middleware.CurrentUser(c); ok {
		data.User = user
	}
	data.Flashes = append(data.Flashes, messages...)
	return data
}

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (h *PageHandler) Index(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, tasksPath)
		return
	}
	c.HTML(http.StatusOK, "index", newPage(c))
}

func (h *PageHandler) Tasks(c *gin.Context) {
	c.HTML(http.StatusOK, "tasks", newPage(c))
}
