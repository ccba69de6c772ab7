package http

import (
	"github.com/gin-gonic/gin"

	appsvc "taskmanager/internal/app"
	"taskmanager/internal/bootstrap"
	"taskmanager/internal/repository"
	"taskmanager/internal/transport/http/flash"
	"taskmanager/internal/transport/http/handler"
	"taskmanager/internal/transport/http/middleware"
	"taskmanager/internal/transport/http/web"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	// ClientIP keys the login limiter, so forwarding headers only count from known proxies.
	if err := router.SetTrustedProxies(app.Config.App.TrustedProxies); err != nil {
		app.Logger.Error("invalid trusted proxies, trusting none", "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		gin.Recovery(),
		middleware.Metrics(app.Metrics),
		middleware.RequestLogger(app.Logger),
		flash.Secure(app.Config.Session.CookieSecure),
	)
	router.HTMLRender = web.MustRenderer()

	userRepo := repository.NewUserRepository(app.DB)
	taskRepo := repository.NewTaskRepository(app.DB)
	authService := appsvc.NewAuthService(userRepo, app.Config.Auth.BcryptCost)
	taskService := appsvc.NewTaskService(taskRepo)

	cookie := handler.CookieOptions{
		Name:   app.Config.Session.CookieName,
		Secure: app.Config.Session.CookieSecure,
	}
	healthHandler := handler.NewHealthHandler(app.DB)
	pageHandler := handler.NewPageHandler()
	authHandler := handler.NewAuthHandler(authService, app.Sessions, app.LoginLimiter, app.Metrics, cookie, app.Logger)
	taskHandler := handler.NewTaskHandler(taskService, app.Metrics, app.Logger)

	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	router.StaticFS("/static", web.StaticFiles())

	site := router.Group("/")
	site.Use(middleware.LoadSession(app.Sessions, authService, cookie.Name, app.Logger))
	site.GET("/", pageHandler.Index)
	site.GET("/tasks", middleware.RequirePageUser(), pageHandler.Tasks)

	authGroup := site.Group("/auth")
	authGroup.GET("/login", authHandler.LoginPage)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/register", authHandler.RegisterPage)
	authGroup.POST("/register", authHandler.Register)
	authGroup.GET("/logout", middleware.RequirePageUser(), authHandler.Logout)

	api := site.Group("/api")
	api.Use(middleware.RequireAPIUser())
	api.GET("/tasks", taskHandler.List)
	api.POST("/tasks", taskHandler.Create)
	api.GET("/tasks/:id", taskHandler.Get)
	api.PUT("/tasks/:id", taskHandler.Update)
	api.DELETE("/tasks/:id", taskHandler.Delete)

	return router
}
