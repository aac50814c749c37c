package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/polyia/polyia-backend/internal/handlers"
	"github.com/polyia/polyia-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	AuthHandler    *handlers.AuthHandler
	LessonHandler  *handlers.LessonHandler
	ChatHandler    *handlers.ChatHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("polyia-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/health", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.GET("/auth/me", cfg.AuthHandler.Me)
	// Lecciones
	protected.POST("/leccion/generar", cfg.LessonHandler.Generar)
	protected.GET("/leccion/lista", cfg.LessonHandler.Lista)
	// Chat
	protected.POST("/chat/local", cfg.ChatHandler.Local)
	protected.GET("/chat/historial", cfg.ChatHandler.Historial)

	return router
}
