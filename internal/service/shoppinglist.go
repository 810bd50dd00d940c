package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// ShoppingListService aggregates the ingredient lines of every recipe in a
// user's cart and renders the downloadable report.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Compute sums amounts grouped by (ingredient name, measurement unit)
// across the user's cart. Grouping is exact string equality, no
// normalization. Results are ordered by name so output is deterministic.
func (s *ShoppingListService) Compute(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	var cartSize int64
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCartEntry{}).
		Where("user_id = ?", userID).Count(&cartSize).Error; err != nil {
		return nil, err
	}
	if cartSize == 0 {
		return nil, ErrEmptyShoppingCart
	}

	var items []types.ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Render formats the report. Pure function of its inputs; now should be UTC.
func Render(user *models.User, items []types.ShoppingListItem, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n\n", user.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02"))
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s) - %d", item.Name, item.MeasurementUnit, item.Amount)
	}
	fmt.Fprintf(&b, "\n\nFoodgram (%d)", now.Year())
	return b.String()
}

// Export computes and renders the shopping list, returning the suggested
// attachment filename alongside the document body.
func (s *ShoppingListService) Export(ctx context.Context, userID uuid.UUID) (filename, body string, err error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}

	items, err := s.Compute(ctx, userID)
	if err != nil {
		return "", "", err
	}

	body = Render(&user, items, time.Now().UTC())
	filename = fmt.Sprintf("%s_shopping_list.txt", user.Username)
	return filename, body, nil
}
