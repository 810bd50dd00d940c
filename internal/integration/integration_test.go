package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

// setupPostgres starts a disposable Postgres container and returns a
// migrated connection. Tests are skipped when docker is not available.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available, skipping integration tests")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := testhelpers.TestConfig()
	cfg.DBHost = host
	cfg.DBPort = port.Port()
	cfg.DBUser = "test"
	cfg.DBPassword = "test"
	cfg.DBName = "test"
	cfg.DBSSLMode = "disable"

	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func postJSON(t *testing.T, router *gin.Engine, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEndAgainstPostgres(t *testing.T) {
	db := setupPostgres(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api.SetupAPI(router, db, testhelpers.TestConfig(), nil)

	// Register and log in.
	w := postJSON(t, router, "/api/v1/users", "", gin.H{
		"email":      "chef@example.com",
		"username":   "chef",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(t, router, "/api/v1/auth/token/login", "", gin.H{
		"email":    "chef@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	tag := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "Sugar", "g")

	// Create two recipes sharing an ingredient.
	var recipeIDs []string
	for _, recipe := range []gin.H{
		{
			"name":         "Pancakes",
			"text":         "Mix and fry.",
			"cooking_time": 20,
			"tags":         []string{tag.ID.String()},
			"ingredients": []gin.H{
				{"id": flour.ID.String(), "amount": 200},
				{"id": sugar.ID.String(), "amount": 50},
			},
		},
		{
			"name":         "Bread",
			"text":         "Knead and bake.",
			"cooking_time": 90,
			"tags":         []string{tag.ID.String()},
			"ingredients": []gin.H{
				{"id": flour.ID.String(), "amount": 300},
			},
		},
	} {
		w = postJSON(t, router, "/api/v1/recipes", login.AuthToken, recipe)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		recipeIDs = append(recipeIDs, created.ID)
	}

	// Fill the cart and download the aggregated list.
	for _, id := range recipeIDs {
		w = postJSON(t, router, fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", id), login.AuthToken, gin.H{})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/download_shopping_cart", nil)
	req.Header.Set("Authorization", "Bearer "+login.AuthToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "- Flour (g) - 500")
	assert.Contains(t, rec.Body.String(), "- Sugar (g) - 50")
}

func TestPostgresUniqueIndexes(t *testing.T) {
	db := setupPostgres(t)

	user := testhelpers.CreateUser(t, db, "user")
	author := testhelpers.CreateUser(t, db, "author")

	// The subscription pair index rejects a raw duplicate insert.
	first := models.Subscription{SubscriberID: user.ID, AuthorID: author.ID}
	require.NoError(t, db.Create(&first).Error)
	dup := models.Subscription{SubscriberID: user.ID, AuthorID: author.ID}
	assert.Error(t, db.Create(&dup).Error)

	// Same for the (name, measurement_unit) ingredient index; the name
	// alone is not unique.
	require.NoError(t, db.Create(&models.Ingredient{Name: "Flour", MeasurementUnit: "g"}).Error)
	assert.Error(t, db.Create(&models.Ingredient{Name: "Flour", MeasurementUnit: "g"}).Error)
	assert.NoError(t, db.Create(&models.Ingredient{Name: "Flour", MeasurementUnit: "kg"}).Error)
}
