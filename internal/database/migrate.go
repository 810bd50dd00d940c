package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// Migrate creates the schema and the composite unique indexes the domain
// relies on. The pair indexes are load-bearing: they keep concurrent
// duplicate writes out even when application-level checks race.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	uniqueIndexes := []struct {
		name    string
		table   string
		columns string
	}{
		{"idx_ingredients_name_unit", "ingredients", "name, measurement_unit"},
		{"idx_recipe_ingredients_pair", "recipe_ingredients", "recipe_id, ingredient_id"},
		{"idx_favorites_pair", "favorites", "user_id, recipe_id"},
		{"idx_shopping_cart_pair", "shopping_cart_entries", "user_id, recipe_id"},
		{"idx_subscriptions_pair", "subscriptions", "subscriber_id, author_id"},
	}

	for _, idx := range uniqueIndexes {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
