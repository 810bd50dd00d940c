package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

type UserHandler struct {
	userService   *service.UserService
	authService   *service.AuthService
	subscriptions *service.Toggle[models.Subscription]
	cfg           *config.Config
}

func NewUserHandler(
	userService *service.UserService,
	authService *service.AuthService,
	subscriptions *service.Toggle[models.Subscription],
	cfg *config.Config,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		authService:   authService,
		subscriptions: subscriptions,
		cfg:           cfg,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuthMiddleware(h.authService)
	required := middleware.AuthMiddleware(h.authService)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.GET("/me", required, h.Me)
		users.GET("/subscriptions", required, h.ListSubscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	viewerID := viewerOf(c)

	users, err := h.userService.List(c.Request.Context(), limit, offset, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": users})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id, viewerOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, offset := parseLimitOffset(c)
	recipesLimit := h.cfg.RecipesLimit
	if v := c.Query("recipes_limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			recipesLimit = n
		}
	}

	subs, err := h.userService.Subscriptions(c.Request.Context(), userID, recipesLimit, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": subs})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.subscriptions.Add(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.userService.SubscriptionProfile(c.Request.Context(), userID, authorID, h.cfg.RecipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.subscriptions.Remove(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// viewerOf returns the authenticated user's id or nil for anonymous
// requests.
func viewerOf(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}
