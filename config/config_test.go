package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MAX_COOKING_TIME", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 1, cfg.MinCookingTime)
	assert.Equal(t, 600, cfg.MaxCookingTime)
	assert.Equal(t, 10000, cfg.MaxIngredientAmount)
	assert.Equal(t, 3, cfg.RecipesLimit)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_COOKING_TIME", "120")
	t.Setenv("RECIPES_LIMIT", "5")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 120, cfg.MaxCookingTime)
	assert.Equal(t, 5, cfg.RecipesLimit)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateConfigBounds(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			JWTSecret:           "s",
			DBHost:              "localhost",
			DBPort:              "5432",
			DBUser:              "u",
			DBName:              "d",
			MinCookingTime:      1,
			MaxCookingTime:      600,
			MinIngredientAmount: 1,
			MaxIngredientAmount: 10000,
			MaxNameLength:       200,
			RecipesLimit:        3,
		}
	}

	require.NoError(t, config.ValidateConfig(base()))

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"min cooking time below 1", func(c *config.Config) { c.MinCookingTime = 0 }},
		{"max cooking time below min", func(c *config.Config) { c.MaxCookingTime = 0; c.MinCookingTime = 1 }},
		{"min amount below 1", func(c *config.Config) { c.MinIngredientAmount = 0 }},
		{"max amount below min", func(c *config.Config) { c.MaxIngredientAmount = 0 }},
		{"name length not positive", func(c *config.Config) { c.MaxNameLength = 0 }},
		{"negative recipes limit", func(c *config.Config) { c.RecipesLimit = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, config.ValidateConfig(cfg))
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "foodgram",
		DBPassword: "pw",
		DBName:     "foodgram",
		DBSSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=foodgram password=pw dbname=foodgram sslmode=disable", cfg.DSN())
}
