package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// UserService serves public profiles and subscription listings.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get returns one public profile with the viewer-relative subscription flag.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	resp := profileOf(&user)
	if viewerID != nil {
		subscribed, err := s.isSubscribed(ctx, *viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		resp.IsSubscribed = subscribed
	}
	return &resp, nil
}

// List returns public profiles ordered by registration time.
func (s *UserService) List(ctx context.Context, limit, offset int, viewerID *uuid.UUID) ([]types.UserResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Order("created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}

	subscribed := map[uuid.UUID]bool{}
	if viewerID != nil && len(users) > 0 {
		ids := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var subs []models.Subscription
		if err := s.db.WithContext(ctx).
			Where("subscriber_id = ? AND author_id IN ?", *viewerID, ids).
			Find(&subs).Error; err != nil {
			return nil, err
		}
		for _, sub := range subs {
			subscribed[sub.AuthorID] = true
		}
	}

	responses := make([]types.UserResponse, 0, len(users))
	for _, u := range users {
		resp := profileOf(&u)
		resp.IsSubscribed = subscribed[u.ID]
		responses = append(responses, resp)
	}
	return responses, nil
}

// Subscriptions lists the authors the subscriber follows, each with up to
// recipesLimit recipe previews and the author's total recipe count.
func (s *UserService) Subscriptions(ctx context.Context, subscriberID uuid.UUID, recipesLimit, limit, offset int) ([]types.SubscriptionResponse, error) {
	query := s.db.WithContext(ctx).
		Where("subscriber_id = ?", subscriberID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var subs []models.Subscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}

	responses := make([]types.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		profile, err := s.SubscriptionProfile(ctx, subscriberID, sub.AuthorID, recipesLimit)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *profile)
	}
	return responses, nil
}

// SubscriptionProfile builds the author profile with recipe previews that a
// successful subscribe returns.
func (s *UserService) SubscriptionProfile(ctx context.Context, subscriberID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	subscribed, err := s.isSubscribed(ctx, subscriberID, authorID)
	if err != nil {
		return nil, err
	}

	recipesQuery := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	if recipesLimit > 0 {
		recipesQuery = recipesQuery.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := recipesQuery.Find(&recipes).Error; err != nil {
		return nil, err
	}

	var recipesCount int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&recipesCount).Error; err != nil {
		return nil, err
	}

	resp := types.SubscriptionResponse{
		UserResponse: profileOf(&author),
		Recipes:      make([]types.RecipeMinimal, 0, len(recipes)),
		RecipesCount: recipesCount,
	}
	resp.IsSubscribed = subscribed
	for _, r := range recipes {
		resp.Recipes = append(resp.Recipes, types.RecipeMinimal{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return &resp, nil
}

func (s *UserService) isSubscribed(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&count).Error
	return count > 0, err
}

func profileOf(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
