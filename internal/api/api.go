package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/service"
)

// SetupAPI wires services and handlers under /api/v1. imageService may be
// nil; recipe writes then ignore base64 image payloads.
func SetupAPI(router *gin.Engine, db *gorm.DB, cfg *config.Config, imageService *service.ImageService) {
	v1 := router.Group("/api/v1")
	{
		authService := service.NewAuthService(db, cfg.JWTSecret)
		userService := service.NewUserService(db)
		recipeService := service.NewRecipeService(db, cfg)
		shoppingService := service.NewShoppingListService(db)

		favorites := service.NewFavoriteToggle(db)
		cart := service.NewShoppingCartToggle(db)
		subscriptions := service.NewSubscriptionToggle(db)

		authHandler := NewAuthHandler(authService)
		userHandler := NewUserHandler(userService, authService, subscriptions, cfg)
		tagHandler := NewTagHandler(db)
		ingredientHandler := NewIngredientHandler(db)
		recipeHandler := NewRecipeHandler(recipeService, shoppingService, authService, imageService, favorites, cart)

		authHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1)
		tagHandler.RegisterRoutes(v1)
		ingredientHandler.RegisterRoutes(v1)
		recipeHandler.RegisterRoutes(v1)
	}
}
