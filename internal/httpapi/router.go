package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	ReviewHandler *ReviewHandler
	HealthHandler *HealthHandler
	CORSOrigins   []string
	Logger        *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.ReviewHandler != nil {
			reviews := api.Group("/students/:studentID/courses/:courseID/reviews")
			reviews.GET("/recommendations", cfg.ReviewHandler.Recommendations)
			reviews.GET("/stats", cfg.ReviewHandler.Stats)
			reviews.GET("/upcoming", cfg.ReviewHandler.Upcoming)
			reviews.GET("/schedule", cfg.ReviewHandler.Schedule)
		}
	}

	return r
}
