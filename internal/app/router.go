package app

import (
	"quizlab_backend/internal/config"
	"quizlab_backend/internal/middleware"
	"quizlab_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/health", c.health.HealthCheck)
	router.GET("/api/health", c.health.HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		quizzes := api.Group("/quizzes")
		{
			quizzes.POST("", c.quiz.Create)
			quizzes.GET("", c.quiz.List)
			quizzes.GET("/:id", c.quiz.Get)
			quizzes.PUT("/:id", c.quiz.Update)
			quizzes.POST("/:id/publish", c.quiz.Publish)
			quizzes.DELETE("/:id", c.quiz.Delete)

			quizzes.POST("/:id/attempts", c.attempt.Start)
		}

		attempts := api.Group("/attempts")
		{
			attempts.GET("", c.attempt.List)
			attempts.GET("/:id", c.attempt.Get)
			attempts.PUT("/:id/tasks/:taskId/answer", c.attempt.SaveAnswer)
			attempts.PATCH("/:id/tasks/:taskId/correctness", c.attempt.SetCorrectness)
			attempts.POST("/:id/evaluation", c.attempt.Evaluate)
		}
	}
}
