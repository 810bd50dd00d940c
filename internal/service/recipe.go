package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// IngredientAmount references an ingredient with its quantity.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput carries everything needed to create or fully replace a
// recipe. The tag set and ingredient lines are always specified in full;
// updates never diff against the stored sets.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// RecipeFilter narrows recipe listings. FavoritedBy and InCartOf filter by
// join-table membership for the given user.
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Limit       int
	Offset      int
}

// RecipeService persists recipes together with their tag set and
// ingredient lines as one transactional unit.
type RecipeService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewRecipeService(db *gorm.DB, cfg *config.Config) *RecipeService {
	return &RecipeService{db: db, cfg: cfg}
}

// Create validates the input, then inserts the recipe row, its tag links
// and its ingredient lines in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*types.RecipeResponse, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.checkIngredientsExist(ctx, in.Ingredients); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		ImageURL:    in.ImageURL,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
		return tx.Create(ingredientLines(recipe.ID, in.Ingredients)).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

// Update replaces the recipe's scalar fields, its whole tag set and its
// whole ingredient-line set. Only the author may update. Validation runs
// before anything is deleted, so a rejected payload leaves the stored
// aggregate untouched.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uuid.UUID, in RecipeInput) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}

	if err := s.validate(in); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.checkIngredientsExist(ctx, in.Ingredients); err != nil {
		return nil, err
	}

	recipe.Name = in.Name
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime
	if in.ImageURL != "" {
		recipe.ImageURL = in.ImageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).
			Select("name", "text", "image_url", "cooking_time", "updated_at").
			Updates(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Create(ingredientLines(recipe.ID, in.Ingredients)).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &actorID)
}

// Delete removes the recipe and every row referencing it. Only the author
// may delete.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get returns the canonical read representation. The viewer may be nil for
// anonymous requests; the relation flags are then false.
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewerID *uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	responses, err := s.buildResponses(ctx, []models.Recipe{recipe}, viewerID)
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List returns recipes matching the filter, ordered by name for
// deterministic output.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter, viewerID *uuid.UUID) ([]types.RecipeResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.name")

	if len(f.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs).
			Distinct("recipes.*")
	}
	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if f.FavoritedBy != nil {
		query = query.Joins(
			"JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?",
			*f.FavoritedBy)
	}
	if f.InCartOf != nil {
		query = query.Joins(
			"JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id AND shopping_cart_entries.user_id = ?",
			*f.InCartOf)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.buildResponses(ctx, recipes, viewerID)
}

func (s *RecipeService) validate(in RecipeInput) error {
	if in.Name == "" {
		return newValidationError("name", "name is required")
	}
	if len(in.Name) > s.cfg.MaxNameLength {
		return newValidationError("name", "name must be at most %d characters", s.cfg.MaxNameLength)
	}
	if in.CookingTime < s.cfg.MinCookingTime || in.CookingTime > s.cfg.MaxCookingTime {
		return newValidationError("cooking_time", "cooking time must be between %d and %d",
			s.cfg.MinCookingTime, s.cfg.MaxCookingTime)
	}
	if len(in.TagIDs) == 0 {
		return newValidationError("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, dup := seenTags[id]; dup {
			return newValidationError("tags", "tags must be unique")
		}
		seenTags[id] = struct{}{}
	}
	if len(in.Ingredients) == 0 {
		return newValidationError("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if _, dup := seenIngredients[line.IngredientID]; dup {
			return newValidationError("ingredients", "ingredients must be unique")
		}
		seenIngredients[line.IngredientID] = struct{}{}
		if line.Amount < s.cfg.MinIngredientAmount || line.Amount > s.cfg.MaxIngredientAmount {
			return newValidationError("amount", "amount must be between %d and %d",
				s.cfg.MinIngredientAmount, s.cfg.MaxIngredientAmount)
		}
	}
	return nil
}

func (s *RecipeService) resolveTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ErrNotFound
	}
	// Keep the caller's ordering.
	byID := make(map[uuid.UUID]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	ordered := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

func (s *RecipeService) checkIngredientsExist(ctx context.Context, lines []IngredientAmount) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}

func ingredientLines(recipeID uuid.UUID, lines []IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return rows
}

// buildResponses assembles read representations, resolving the viewer's
// favorite, cart and subscription flags in three batched queries.
func (s *RecipeService) buildResponses(ctx context.Context, recipes []models.Recipe, viewerID *uuid.UUID) ([]types.RecipeResponse, error) {
	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if viewerID != nil && len(recipes) > 0 {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var favs []models.Favorite
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
			Find(&favs).Error; err != nil {
			return nil, err
		}
		for _, f := range favs {
			favorited[f.RecipeID] = true
		}

		var entries []models.ShoppingCartEntry
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
			Find(&entries).Error; err != nil {
			return nil, err
		}
		for _, e := range entries {
			inCart[e.RecipeID] = true
		}

		var subs []models.Subscription
		if err := s.db.WithContext(ctx).
			Where("subscriber_id = ? AND author_id IN ?", *viewerID, authorIDs).
			Find(&subs).Error; err != nil {
			return nil, err
		}
		for _, sub := range subs {
			subscribed[sub.AuthorID] = true
		}
	}

	responses := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		resp := types.RecipeResponse{
			ID:               r.ID,
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Author: types.UserResponse{
				ID:           r.Author.ID,
				Email:        r.Author.Email,
				Username:     r.Author.Username,
				FirstName:    r.Author.FirstName,
				LastName:     r.Author.LastName,
				IsSubscribed: subscribed[r.AuthorID],
			},
			Tags:        make([]types.TagResponse, 0, len(r.Tags)),
			Ingredients: make([]types.IngredientInRecipe, 0, len(r.Ingredients)),
		}
		for _, t := range r.Tags {
			resp.Tags = append(resp.Tags, types.TagResponse{
				ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug,
			})
		}
		for _, line := range r.Ingredients {
			resp.Ingredients = append(resp.Ingredients, types.IngredientInRecipe{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Minimal returns the short recipe shape used by relation toggles.
func (s *RecipeService) Minimal(ctx context.Context, recipeID uuid.UUID) (*types.RecipeMinimal, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &types.RecipeMinimal{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}, nil
}
