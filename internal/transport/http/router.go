package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ekrsw/knowledge/internal/handlers"
	mwauth "github.com/ekrsw/knowledge/internal/middleware/auth"
)

type Deps struct {
	DB               *gorm.DB
	AuthMiddleware   *mwauth.Middleware
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	ArticleHandler   *handlers.ArticleHandler
	KnowledgeHandler *handlers.KnowledgeHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/token", d.AuthHandler.Login)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.POST("/logout", d.AuthHandler.Logout, d.AuthMiddleware.RequireAuth)
	authGroup.GET("/me", d.AuthHandler.Me, d.AuthMiddleware.RequireAuth)

	users := v1.Group("/users", d.AuthMiddleware.RequireAuth)
	users.GET("", d.UserHandler.List)
	users.GET("/:id", d.UserHandler.Get)
	users.PATCH("/:id", d.UserHandler.Update)

	articles := v1.Group("/articles", d.AuthMiddleware.RequireAuth)
	articles.GET("", d.ArticleHandler.List)
	articles.GET("/search", d.ArticleHandler.Search)
	articles.GET("/:number", d.ArticleHandler.Get)
	articles.POST("", d.ArticleHandler.Create, d.AuthMiddleware.AdminOnly)
	articles.PATCH("/:number", d.ArticleHandler.Update, d.AuthMiddleware.AdminOnly)
	articles.DELETE("/:number", d.ArticleHandler.Delete, d.AuthMiddleware.AdminOnly)
	articles.POST("/import", d.ArticleHandler.ImportCSV, d.AuthMiddleware.AdminOnly)

	knowledge := v1.Group("/knowledge", d.AuthMiddleware.RequireAuth)
	knowledge.GET("", d.KnowledgeHandler.List)
	knowledge.GET("/:id", d.KnowledgeHandler.Get)
	knowledge.POST("", d.KnowledgeHandler.Create)
	knowledge.PUT("/:id", d.KnowledgeHandler.Update)
	knowledge.PATCH("/:id/status", d.KnowledgeHandler.UpdateStatus)
	knowledge.POST("/:id/submit", d.KnowledgeHandler.Submit)
	knowledge.POST("/:id/approve", d.KnowledgeHandler.Approve)
	knowledge.DELETE("/:id", d.KnowledgeHandler.Delete)
}
