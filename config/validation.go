package config

import "fmt"

// ValidateConfig checks that required values are present and that the
// domain bounds are coherent before the server starts.
func ValidateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return fmt.Errorf("database configuration is incomplete")
	}
	if cfg.MinCookingTime < 1 {
		return fmt.Errorf("MIN_COOKING_TIME must be at least 1, got %d", cfg.MinCookingTime)
	}
	if cfg.MaxCookingTime < cfg.MinCookingTime {
		return fmt.Errorf("MAX_COOKING_TIME (%d) must not be below MIN_COOKING_TIME (%d)",
			cfg.MaxCookingTime, cfg.MinCookingTime)
	}
	if cfg.MinIngredientAmount < 1 {
		return fmt.Errorf("MIN_INGREDIENT_AMOUNT must be at least 1, got %d", cfg.MinIngredientAmount)
	}
	if cfg.MaxIngredientAmount < cfg.MinIngredientAmount {
		return fmt.Errorf("MAX_INGREDIENT_AMOUNT (%d) must not be below MIN_INGREDIENT_AMOUNT (%d)",
			cfg.MaxIngredientAmount, cfg.MinIngredientAmount)
	}
	if cfg.MaxNameLength < 1 {
		return fmt.Errorf("MAX_NAME_LENGTH must be positive, got %d", cfg.MaxNameLength)
	}
	if cfg.RecipesLimit < 0 {
		return fmt.Errorf("RECIPES_LIMIT must not be negative, got %d", cfg.RecipesLimit)
	}
	return nil
}
