package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// SetupRouter builds the Gin engine with CORS, optional rate limiting and
// all API routes. redisClient and imageService may be nil.
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client, imageService *service.ImageService) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     120,
			KeyPrefix: "ratelimit",
		})
		router.Use(limiter.Middleware())
	}

	api.SetupAPI(router, db, cfg, imageService)

	return router
}
