package routes

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/kindergarten-canvas/backend/internal/app/auth"
	"github.com/kindergarten-canvas/backend/internal/app/controllers"
	"github.com/kindergarten-canvas/backend/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter.
type Controllers struct {
	Auth    *controllers.AuthController
	User    *controllers.UserController
	News    *controllers.NewsController
	Teacher *controllers.TeacherController
	Public  *controllers.PublicController
	Stats   *controllers.StatsController
	Upload  *controllers.UploadController
	Health  *controllers.HealthController
	// Preview upgrades /preview/ws. Nil leaves the route unmounted.
	Preview gin.HandlerFunc
}

// Limits are the rate limiting middlewares. Nil entries are skipped.
type Limits struct {
	API   gin.HandlerFunc
	Login gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, limits Limits) {
	v1 := router.Group("/api/v1")
	if limits.API != nil {
		v1.Use(limits.API)
	}

	v1.GET("/health", c.Health.Health)
	v1.GET("/health/ready", c.Health.Ready)

	// --- Auth ---
	auth := v1.Group("/client/auth")
	{
		login := []gin.HandlerFunc{c.Auth.Login}
		if limits.Login != nil {
			login = append([]gin.HandlerFunc{limits.Login}, login...)
		}
		auth.POST("/login", login...)
		auth.POST("/refresh", c.Auth.Refresh)
		auth.POST("/logout", authMiddleware.JWTAuth(), c.Auth.Logout)

		// Self-service account flows are not offered
		auth.POST("/register", c.Auth.NotImplemented)
		auth.POST("/confirm", c.Auth.NotImplemented)
		auth.POST("/reset", c.Auth.NotImplemented)
	}

	me := v1.Group("/client/users/me")
	me.Use(authMiddleware.JWTAuth())
	{
		me.GET("", c.User.GetMe)
		me.PUT("", c.User.UpdateMe)
		me.DELETE("", c.User.DeleteMe)
	}

	// --- Admin panel ---
	admin := v1.Group("/admin/v1")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(appauth.ContentRoles()...))
	{
		news := admin.Group("/news")
		{
			news.GET("", c.News.List)
			news.GET("/:id", c.News.Get)
			news.POST("", c.News.Create)
			news.PUT("/:id", c.News.Update)
			news.DELETE("/:id", c.News.Delete)
		}

		teachers := admin.Group("/teachers")
		{
			teachers.GET("", c.Teacher.List)
			teachers.GET("/:id", c.Teacher.Get)
			teachers.POST("", c.Teacher.Create)
			teachers.PUT("/:id", c.Teacher.Update)
			teachers.DELETE("/:id", c.Teacher.Delete)
		}

		admin.POST("/upload", c.Upload.Upload)

		users := admin.Group("/users")
		users.Use(authMiddleware.RoleRequired(appauth.UserAdminRoles()...))
		{
			users.GET("", c.User.ListUsers)
			users.GET("/:id", c.User.GetUser)
			users.POST("", c.User.CreateUser)
			users.DELETE("/:id", c.User.DeleteUser)
		}
	}

	// --- Public site ---
	public := v1.Group("/public")
	{
		public.GET("/news", c.Public.ListNews)
		public.GET("/news/:id", c.Public.GetNews)
	}

	v1.GET("/stats/content-counts", authMiddleware.JWTAuth(), c.Stats.ContentCounts)

	// The socket authenticates itself from the query token or the header.
	if c.Preview != nil {
		v1.GET("/preview/ws", c.Preview)
	}
}
