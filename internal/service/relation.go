package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// Toggle adds and removes rows of one join-entity kind. The same component
// backs favorites, shopping-cart entries and subscriptions; only the row
// constructor, the target lookup and the reflexive rule differ per kind.
type Toggle[R any] struct {
	db *gorm.DB

	// newRow builds the join row for a (user, target) pair. The zero-free
	// fields double as the lookup condition for existence and removal.
	newRow func(userID, targetID uuid.UUID) R

	// checkTarget confirms the target exists, returning ErrNotFound
	// otherwise.
	checkTarget func(ctx context.Context, db *gorm.DB, targetID uuid.UUID) error

	// selfForbidden rejects user == target before anything else. Only
	// subscriptions need it; a recipe can never equal its user.
	selfForbidden bool
}

// Add inserts the join row. The pre-insert existence check gives the
// common-case Conflict; the unique index translation backstops concurrent
// duplicates.
func (t *Toggle[R]) Add(ctx context.Context, userID, targetID uuid.UUID) error {
	if t.selfForbidden && userID == targetID {
		return newValidationError("author", "self-subscription is not allowed")
	}
	if err := t.checkTarget(ctx, t.db, targetID); err != nil {
		return err
	}

	row := t.newRow(userID, targetID)
	var count int64
	if err := t.db.WithContext(ctx).Model(&row).Where(&row).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}

	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Remove deletes the join row; removing a relation that does not exist is
// an error, not a silent success.
func (t *Toggle[R]) Remove(ctx context.Context, userID, targetID uuid.UUID) error {
	row := t.newRow(userID, targetID)
	res := t.db.WithContext(ctx).Where(&row).Delete(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func checkRecipeExists(ctx context.Context, db *gorm.DB, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := db.WithContext(ctx).Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func checkUserExists(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	var user models.User
	if err := db.WithContext(ctx).Select("id").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// NewFavoriteToggle wires the toggle for favorites.
func NewFavoriteToggle(db *gorm.DB) *Toggle[models.Favorite] {
	return &Toggle[models.Favorite]{
		db: db,
		newRow: func(userID, recipeID uuid.UUID) models.Favorite {
			return models.Favorite{UserRecipe: models.UserRecipe{UserID: userID, RecipeID: recipeID}}
		},
		checkTarget: checkRecipeExists,
	}
}

// NewShoppingCartToggle wires the toggle for shopping-cart entries.
func NewShoppingCartToggle(db *gorm.DB) *Toggle[models.ShoppingCartEntry] {
	return &Toggle[models.ShoppingCartEntry]{
		db: db,
		newRow: func(userID, recipeID uuid.UUID) models.ShoppingCartEntry {
			return models.ShoppingCartEntry{UserRecipe: models.UserRecipe{UserID: userID, RecipeID: recipeID}}
		},
		checkTarget: checkRecipeExists,
	}
}

// NewSubscriptionToggle wires the toggle for author subscriptions.
func NewSubscriptionToggle(db *gorm.DB) *Toggle[models.Subscription] {
	return &Toggle[models.Subscription]{
		db: db,
		newRow: func(subscriberID, authorID uuid.UUID) models.Subscription {
			return models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
		},
		checkTarget:   checkUserExists,
		selfForbidden: true,
	}
}
