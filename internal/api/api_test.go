package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/testhelpers"
)

func setupAPITest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	router := gin.New()
	api.SetupAPI(router, db, testhelpers.TestConfig(), nil)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/users", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/token/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.AuthToken)
	return resp.AuthToken
}

func TestRegisterLoginFlow(t *testing.T) {
	router, _ := setupAPITest(t)

	token := registerAndLogin(t, router, "ada")

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	decode(t, w, &me)
	assert.Equal(t, "ada", me.Username)
	assert.Equal(t, "ada@example.com", me.Email)

	// Duplicate registration reports the offending field.
	w = doJSON(t, router, http.MethodPost, "/api/v1/users", "", gin.H{
		"email":      "ada@example.com",
		"username":   "ada2",
		"first_name": "Test",
		"last_name":  "User",
		"password":   "s3cret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")

	// Bad credentials.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/token/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReferenceDataEndpoints(t *testing.T) {
	router, db := setupAPITest(t)
	testhelpers.CreateTag(t, db, "breakfast")
	testhelpers.CreateTag(t, db, "dinner")
	testhelpers.CreateIngredient(t, db, "Flour", "g")
	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "Salt", "g")

	w := doJSON(t, router, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tags []map[string]any
	decode(t, w, &tags)
	assert.Len(t, tags, 2)

	w = doJSON(t, router, http.MethodGet, "/api/v1/ingredients?name=S", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ingredients []struct {
		Name string `json:"name"`
	}
	decode(t, w, &ingredients)
	require.Len(t, ingredients, 2)
	for _, ing := range ingredients {
		assert.Contains(t, []string{"Sugar", "Salt"}, ing.Name)
	}
}

func TestRecipeLifecycleOverHTTP(t *testing.T) {
	router, db := setupAPITest(t)
	tag := testhelpers.CreateTag(t, db, "breakfast")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "Sugar", "g")

	authorToken := registerAndLogin(t, router, "author")
	strangerToken := registerAndLogin(t, router, "stranger")

	payload := gin.H{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"tags":         []string{tag.ID.String()},
		"ingredients": []gin.H{
			{"id": flour.ID.String(), "amount": 200},
			{"id": sugar.ID.String(), "amount": 50},
		},
	}

	// Anonymous create is rejected.
	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", "", payload)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/recipes", authorToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	decode(t, w, &created)
	assert.Equal(t, "Pancakes", created.Name)

	recipePath := fmt.Sprintf("/api/v1/recipes/%s", created.ID)

	// Anyone can read it.
	w = doJSON(t, router, http.MethodGet, recipePath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Only the author may update or delete.
	update := payload
	update["name"] = "Thin Pancakes"
	w = doJSON(t, router, http.MethodPatch, recipePath, strangerToken, update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPatch, recipePath, authorToken, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &created)
	assert.Equal(t, "Thin Pancakes", created.Name)

	w = doJSON(t, router, http.MethodDelete, recipePath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, router, http.MethodDelete, recipePath, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, recipePath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeValidationOverHTTP(t *testing.T) {
	router, db := setupAPITest(t)
	tag := testhelpers.CreateTag(t, db, "breakfast")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	token := registerAndLogin(t, router, "author")

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 0,
		"tags":         []string{tag.ID.String()},
		"ingredients":  []gin.H{{"id": flour.ID.String(), "amount": 200}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cooking_time")
}

func TestFavoriteAndCartEndpoints(t *testing.T) {
	router, db := setupAPITest(t)
	tag := testhelpers.CreateTag(t, db, "breakfast")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")

	authorToken := registerAndLogin(t, router, "author")
	userToken := registerAndLogin(t, router, "user")

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", authorToken, gin.H{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"tags":         []string{tag.ID.String()},
		"ingredients":  []gin.H{{"id": flour.ID.String(), "amount": 200}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &created)

	favoritePath := fmt.Sprintf("/api/v1/recipes/%s/favorite", created.ID)
	cartPath := fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", created.ID)

	w = doJSON(t, router, http.MethodPost, favoritePath, userToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var minimal struct {
		Name        string `json:"name"`
		CookingTime int    `json:"cooking_time"`
	}
	decode(t, w, &minimal)
	assert.Equal(t, "Pancakes", minimal.Name)
	assert.Equal(t, 20, minimal.CookingTime)

	// Double add conflicts.
	w = doJSON(t, router, http.MethodPost, favoritePath, userToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, cartPath, userToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Flags reflect the viewer.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%s", created.ID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		IsFavorited      bool `json:"is_favorited"`
		IsInShoppingCart bool `json:"is_in_shopping_cart"`
	}
	decode(t, w, &got)
	assert.True(t, got.IsFavorited)
	assert.True(t, got.IsInShoppingCart)

	// Download aggregates the cart.
	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/download_shopping_cart", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "user_shopping_list.txt")
	assert.Contains(t, w.Body.String(), "- Flour (g) - 200")

	// Remove both; removing again is a 404.
	w = doJSON(t, router, http.MethodDelete, favoritePath, userToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodDelete, favoritePath, userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, cartPath, userToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// An empty cart cannot be downloaded.
	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/download_shopping_cart", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "shopping cart is empty")
}

func TestSubscriptionEndpoints(t *testing.T) {
	router, db := setupAPITest(t)
	tag := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")

	authorToken := registerAndLogin(t, router, "author")
	subscriberToken := registerAndLogin(t, router, "subscriber")

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", authorToken, gin.H{
		"name":         "Bread",
		"text":         "Knead and bake.",
		"cooking_time": 90,
		"tags":         []string{tag.ID.String()},
		"ingredients":  []gin.H{{"id": flour.ID.String(), "amount": 300}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/me", authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var author struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &author)

	subscribePath := fmt.Sprintf("/api/v1/users/%s/subscribe", author.ID)

	w = doJSON(t, router, http.MethodPost, subscribePath, subscriberToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var profile struct {
		Username     string `json:"username"`
		IsSubscribed bool   `json:"is_subscribed"`
		RecipesCount int    `json:"recipes_count"`
		Recipes      []struct {
			Name string `json:"name"`
		} `json:"recipes"`
	}
	decode(t, w, &profile)
	assert.Equal(t, "author", profile.Username)
	assert.True(t, profile.IsSubscribed)
	assert.Equal(t, 1, profile.RecipesCount)
	require.Len(t, profile.Recipes, 1)
	assert.Equal(t, "Bread", profile.Recipes[0].Name)

	// Self-subscription is a 400.
	w = doJSON(t, router, http.MethodPost, subscribePath, authorToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Subscriptions listing.
	w = doJSON(t, router, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=1", subscriberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Results []json.RawMessage `json:"results"`
	}
	decode(t, w, &listing)
	assert.Len(t, listing.Results, 1)

	w = doJSON(t, router, http.MethodDelete, subscribePath, subscriberToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodDelete, subscribePath, subscriberToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
