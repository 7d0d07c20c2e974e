package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/domain"
	"recipehub/entities"
	"recipehub/internal/config"
	"recipehub/internal/utils"
	"recipehub/internal/utils/storage"
	"recipehub/pkg/ingredient"
	"recipehub/pkg/tag"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, req domain.UpdateRecipeRequest, recipeID, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID, userID string) error
		GetRecipeDetail(ctx context.Context, recipeID, actingUserID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int) ([]domain.RecipeResponse, int64, error)

		GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, token string) (domain.RecipeResponse, error)

		AddFavorite(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error)
		RemoveFavorite(ctx context.Context, userID, recipeID string) error
		AddToCart(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error)
		RemoveFromCart(ctx context.Context, userID, recipeID string) error

		BuildShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
		RenderShoppingList(items []domain.ShoppingListItem) string
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		tagRepository        tag.TagRepository
		ingredientRepository ingredient.IngredientRepository
		s3                   storage.ImageStore
		cfg                  *config.Config
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	s3 storage.ImageStore,
	cfg *config.Config,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		tagRepository:        tagRepository,
		ingredientRepository: ingredientRepository,
		s3:                   s3,
		cfg:                  cfg,
	}
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	author, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}
	if req.Image == "" {
		return domain.RecipeResponse{}, domain.ErrImageRequired
	}

	tags, ingredients, err := s.resolveAssociations(ctx, req.Tags, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if req.CookingTime < s.cfg.MinCookingTime {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
		ShortLink:   uuid.New(),
	}

	rows := make([]*entities.RecipeIngredient, 0, len(req.Ingredients))
	for i, item := range req.Ingredients {
		rows = append(rows, &entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: ingredients[i].ID,
			Amount:       item.Amount,
		})
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, rows, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, req domain.UpdateRecipeRequest, recipeID, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.getOwnedRecipe(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, ingredients, err := s.resolveAssociations(ctx, req.Tags, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if req.CookingTime < s.cfg.MinCookingTime {
		return domain.RecipeResponse{}, domain.ErrInvalidCookingTime
	}

	// The image is optional on update; an omitted payload keeps the stored
	// one. The short link never changes.
	if req.Image != "" {
		oldImage := recipe.ImageURL
		imageURL, err := s.uploadImage(ctx, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
		if oldImage != "" {
			_ = s.s3.DeleteFile(ctx, s.s3.GetObjectKeyFromLink(oldImage))
		}
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	recipe.Tags = nil
	recipe.RecipeIngredients = nil

	rows := make([]*entities.RecipeIngredient, 0, len(req.Ingredients))
	for i, item := range req.Ingredients {
		rows = append(rows, &entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: ingredients[i].ID,
			Amount:       item.Amount,
		})
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, rows, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, userID string) error {
	recipe, err := s.getOwnedRecipe(ctx, recipeID, userID)
	if err != nil {
		return err
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipe); err != nil {
		return err
	}

	if recipe.ImageURL != "" {
		_ = s.s3.DeleteFile(ctx, s.s3.GetObjectKeyFromLink(recipe.ImageURL))
	}
	return nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID, actingUserID string) (domain.RecipeResponse, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	return s.toRecipeResponse(ctx, recipe, actingUserID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int) ([]domain.RecipeResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	// ItemsOnPage is both the default and the cap
	if limit < 1 || limit > s.cfg.ItemsOnPage {
		limit = s.cfg.ItemsOnPage
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		resp, err := s.toRecipeResponse(ctx, recipe, filter.UserID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, resp)
	}
	return result, count, nil
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return domain.ShortLinkResponse{}, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortLinkResponse{}, err
	}

	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%s", strings.TrimRight(s.cfg.AppURL, "/"), recipe.ShortLink.String()),
	}, nil
}

func (s *recipeService) ResolveShortLink(ctx context.Context, token string) (domain.RecipeResponse, error) {
	if _, err := uuid.Parse(token); err != nil {
		return domain.RecipeResponse{}, domain.ErrShortLinkNotFound
	}

	recipe, err := s.recipeRepository.GetRecipeByShortLink(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrShortLinkNotFound
		}
		return domain.RecipeResponse{}, err
	}

	return s.toRecipeResponse(ctx, recipe, "")
}

// AddFavorite inserts without checking first; the unique index is the
// arbiter, so a duplicate surfaces as a conflict even under concurrent adds.
func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error) {
	recipe, user, err := s.lookupPair(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}

	favorite := &entities.Favorite{ID: uuid.New(), UserID: user, RecipeID: recipe.ID}
	if err := s.recipeRepository.AddFavorite(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ShortRecipeResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.ShortRecipeResponse{}, err
	}

	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	if _, _, err := s.lookupPair(ctx, userID, recipeID); err != nil {
		return err
	}

	if err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotInFavorites
		}
		return err
	}
	return nil
}

func (s *recipeService) AddToCart(ctx context.Context, userID, recipeID string) (domain.ShortRecipeResponse, error) {
	recipe, user, err := s.lookupPair(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}

	item := &entities.ShoppingCart{ID: uuid.New(), UserID: user, RecipeID: recipe.ID}
	if err := s.recipeRepository.AddToCart(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ShortRecipeResponse{}, domain.ErrAlreadyInCart
		}
		return domain.ShortRecipeResponse{}, err
	}

	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, userID, recipeID string) error {
	if _, _, err := s.lookupPair(ctx, userID, recipeID); err != nil {
		return err
	}

	if err := s.recipeRepository.RemoveFromCart(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotInCart
		}
		return err
	}
	return nil
}

func (s *recipeService) BuildShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	totals, err := s.recipeRepository.SumCartIngredients(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for _, row := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            row.Name,
			TotalAmount:     row.TotalAmount,
			MeasurementUnit: row.MeasurementUnit,
		})
	}
	return items, nil
}

// RenderShoppingList renders the aggregated cart as a numbered plain-text
// report, one line per (name, unit) group.
func (s *recipeService) RenderShoppingList(items []domain.ShoppingListItem) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s - %d %s.", i+1, item.Name, item.TotalAmount, item.MeasurementUnit))
	}
	return strings.Join(lines, "\n")
}

// resolveAssociations validates the tag and ingredient lists up front and
// loads the referenced catalog rows. Nothing is written until every check
// has passed. The returned ingredient slice is index-aligned with the
// request list.
func (s *recipeService) resolveAssociations(ctx context.Context, tagIDs []string, items []domain.RecipeIngredientRequest) ([]*entities.Tag, []*entities.Ingredient, error) {
	if len(tagIDs) == 0 {
		return nil, nil, domain.ErrTagsRequired
	}
	seenTags := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		if _, ok := seenTags[id]; ok {
			return nil, nil, domain.ErrDuplicateTag
		}
		seenTags[id] = struct{}{}
	}

	if len(items) == 0 {
		return nil, nil, domain.ErrIngredientsRequired
	}
	seenIngredients := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, err := uuid.Parse(item.ID); err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		if _, ok := seenIngredients[item.ID]; ok {
			return nil, nil, domain.ErrDuplicateIngredient
		}
		seenIngredients[item.ID] = struct{}{}
		if item.Amount < s.cfg.MinAmount {
			return nil, nil, domain.ErrInvalidAmount
		}
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, domain.ErrTagNotFound
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	rows, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*entities.Ingredient, len(rows))
	for _, ing := range rows {
		byID[ing.ID.String()] = ing
	}

	ingredients := make([]*entities.Ingredient, 0, len(items))
	for _, item := range items {
		ing, ok := byID[item.ID]
		if !ok {
			return nil, nil, domain.ErrIngredientNotFound
		}
		ingredients = append(ingredients, ing)
	}

	return tags, ingredients, nil
}

func (s *recipeService) getOwnedRecipe(ctx context.Context, recipeID, userID string) (*entities.Recipe, error) {
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}

	if recipe.AuthorID.String() != userID {
		return nil, domain.ErrNotRecipeOwner
	}
	return recipe, nil
}

func (s *recipeService) lookupPair(ctx context.Context, userID, recipeID string) (*entities.Recipe, uuid.UUID, error) {
	user, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}

	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, domain.ErrRecipeNotFound
		}
		return nil, uuid.Nil, err
	}
	return recipe, user, nil
}

func (s *recipeService) uploadImage(ctx context.Context, payload string) (string, error) {
	data, contentType, err := utils.ParseBase64Image(payload)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s%s", uuid.New().String(), utils.ImageExtension(contentType))
	objectKey, err := s.s3.UploadFile(ctx, fileName, data, contentType, "recipes", storage.AllowImage...)
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, actingUserID string) (domain.RecipeResponse, error) {
	isFavorited := false
	isInCart := false
	if actingUserID != "" {
		var err error
		if isFavorited, err = s.recipeRepository.IsFavorited(ctx, actingUserID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.recipeRepository.IsInCart(ctx, actingUserID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, domain.TagResponse{ID: t.ID.String(), Name: t.Name, Slug: t.Slug})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.RecipeIngredients))
	for _, ri := range recipe.RecipeIngredients {
		row := domain.RecipeIngredientResponse{
			ID:     ri.IngredientID.String(),
			Amount: ri.Amount,
		}
		if ri.Ingredient != nil {
			row.Name = ri.Ingredient.Name
			row.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, row)
	}

	author := domain.UserResponse{}
	if recipe.Author != nil {
		author = domain.UserResponse{
			ID:        recipe.Author.ID.String(),
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
			Avatar:    recipe.Author.AvatarURL,
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}, nil
}

func toShortRecipeResponse(recipe *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
