package recipe

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"recipehub/domain"
	"recipehub/entities"
	"recipehub/internal/config"
	"recipehub/pkg/ingredient"
	"recipehub/pkg/tag"
)

// fakeImageStore mirrors the AwsS3 contract: UploadFile returns the bare
// object key, GetPublicLinkKey turns a key into the public URL.
type fakeImageStore struct{}

func (fakeImageStore) UploadFile(_ context.Context, fileName string, _ []byte, _ string, dir string, _ ...string) (string, error) {
	return dir + "/" + fileName, nil
}
func (fakeImageStore) DeleteFile(context.Context, string) error { return nil }
func (fakeImageStore) GetObjectKeyFromLink(link string) string  { return link }

func (fakeImageStore) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	))
	return db
}

func newTestService(t *testing.T) (RecipeService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		AppURL:         "http://localhost:8080",
		ItemsOnPage:    6,
		MinAmount:      1,
		MinCookingTime: 1,
	}
	service := NewRecipeService(
		NewRecipeRepository(db),
		tag.NewTagRepository(db),
		ingredient.NewIngredientRepository(db),
		fakeImageStore{},
		cfg,
	)
	return service, db
}

func seedUser(t *testing.T, db *gorm.DB, email, username string) *entities.User {
	t.Helper()

	user := &entities.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTag(t *testing.T, db *gorm.DB, name, slug string) *entities.Tag {
	t.Helper()

	tg := &entities.Tag{ID: uuid.New(), Name: name, Slug: slug}
	require.NoError(t, db.Create(tg).Error)
	return tg
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()

	ing := &entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func testImage() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
}

func createRequest(tagIDs []string, ingredients []domain.RecipeIngredientRequest) domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Image:       testImage(),
		Tags:        tagIDs,
		Ingredients: ingredients,
	}
}

func TestCreateRecipe(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")
	milk := seedIngredient(t, db, "Milk", "ml")

	req := createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: milk.ID.String(), Amount: 300},
		},
	)

	res, err := service.CreateRecipe(ctx, req, author.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", res.Name)
	assert.Equal(t, author.ID.String(), res.Author.ID)
	assert.Len(t, res.Tags, 1)
	assert.Len(t, res.Ingredients, 2)
	assert.False(t, res.IsFavorited)
	// the stored image is the public link, not the bare object key
	assert.True(t, strings.HasPrefix(res.Image, "https://cdn.test/recipes/"), res.Image)
}

func TestCreateRecipeValidation(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")

	tagID := breakfast.ID.String()
	ingredients := []domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}}

	tests := []struct {
		name    string
		mutate  func(*domain.CreateRecipeRequest)
		wantErr error
	}{
		{
			name:    "no tags",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Tags = nil },
			wantErr: domain.ErrTagsRequired,
		},
		{
			name:    "duplicate tag",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Tags = []string{tagID, tagID} },
			wantErr: domain.ErrDuplicateTag,
		},
		{
			name:    "unknown tag",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Tags = []string{uuid.NewString()} },
			wantErr: domain.ErrTagNotFound,
		},
		{
			name:    "no ingredients",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Ingredients = nil },
			wantErr: domain.ErrIngredientsRequired,
		},
		{
			name: "duplicate ingredient",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Ingredients = append(r.Ingredients, r.Ingredients[0])
			},
			wantErr: domain.ErrDuplicateIngredient,
		},
		{
			name: "unknown ingredient",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Ingredients = []domain.RecipeIngredientRequest{{ID: uuid.NewString(), Amount: 100}}
			},
			wantErr: domain.ErrIngredientNotFound,
		},
		{
			name: "amount below minimum",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Ingredients = []domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 0}}
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "cooking time below minimum",
			mutate:  func(r *domain.CreateRecipeRequest) { r.CookingTime = 0 },
			wantErr: domain.ErrInvalidCookingTime,
		},
		{
			name:    "missing image",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Image = "" },
			wantErr: domain.ErrImageRequired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := createRequest([]string{tagID}, ingredients)
			tc.mutate(&req)

			_, err := service.CreateRecipe(ctx, req, author.ID.String())
			assert.ErrorIs(t, err, tc.wantErr)

			// nothing may have been written
			var count int64
			require.NoError(t, db.Model(&entities.Recipe{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestUpdateRecipeReplacesAssociations(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	dinner := seedTag(t, db, "Dinner", "dinner")
	flour := seedIngredient(t, db, "Flour", "g")
	milk := seedIngredient(t, db, "Milk", "ml")
	sugar := seedIngredient(t, db, "Sugar", "g")

	created, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: milk.ID.String(), Amount: 300},
		},
	), author.ID.String())
	require.NoError(t, err)

	updated, err := service.UpdateRecipe(ctx, domain.UpdateRecipeRequest{
		Name:        "Thin Pancakes",
		Text:        "Mix, rest, fry.",
		CookingTime: 25,
		Tags:        []string{dinner.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: sugar.ID.String(), Amount: 50},
		},
	}, created.ID, author.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "Thin Pancakes", updated.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "Sugar", updated.Ingredients[0].Name)
	assert.Equal(t, 50, updated.Ingredients[0].Amount)
	// omitted image keeps the stored one
	assert.Equal(t, created.Image, updated.Image)

	// the old association rows are gone, not merged
	var riCount int64
	require.NoError(t, db.Model(&entities.RecipeIngredient{}).Count(&riCount).Error)
	assert.EqualValues(t, 1, riCount)
}

func TestUpdateRecipeKeepsShortLink(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")

	created, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), author.ID.String())
	require.NoError(t, err)

	before, err := service.GetShortLink(ctx, created.ID)
	require.NoError(t, err)

	_, err = service.UpdateRecipe(ctx, domain.UpdateRecipeRequest{
		Name:        "Renamed",
		Text:        "Changed.",
		CookingTime: 5,
		Tags:        []string{breakfast.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	}, created.ID, author.ID.String())
	require.NoError(t, err)

	after, err := service.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ShortLink, after.ShortLink)
}

func TestRecipeOwnership(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	stranger := seedUser(t, db, "other@example.com", "other")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")

	created, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), author.ID.String())
	require.NoError(t, err)

	_, err = service.UpdateRecipe(ctx, domain.UpdateRecipeRequest{
		Name:        "Hijacked",
		Text:        "x",
		CookingTime: 5,
		Tags:        []string{breakfast.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	}, created.ID, stranger.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeOwner)

	err = service.DeleteRecipe(ctx, created.ID, stranger.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotRecipeOwner)

	require.NoError(t, service.DeleteRecipe(ctx, created.ID, author.ID.String()))
	_, err = service.GetRecipeDetail(ctx, created.ID, author.ID.String())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestFavoriteToggle(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	reader := seedUser(t, db, "reader@example.com", "reader")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")

	created, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), author.ID.String())
	require.NoError(t, err)

	short, err := service.AddFavorite(ctx, reader.ID.String(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, short.ID)

	_, err = service.AddFavorite(ctx, reader.ID.String(), created.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)

	detail, err := service.GetRecipeDetail(ctx, created.ID, reader.ID.String())
	require.NoError(t, err)
	assert.True(t, detail.IsFavorited)

	require.NoError(t, service.RemoveFavorite(ctx, reader.ID.String(), created.ID))
	err = service.RemoveFavorite(ctx, reader.ID.String(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotInFavorites)

	_, err = service.AddFavorite(ctx, reader.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestShoppingCartToggle(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")

	created, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), author.ID.String())
	require.NoError(t, err)

	_, err = service.AddToCart(ctx, author.ID.String(), created.ID)
	require.NoError(t, err)

	_, err = service.AddToCart(ctx, author.ID.String(), created.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInCart)

	require.NoError(t, service.RemoveFromCart(ctx, author.ID.String(), created.ID))
	err = service.RemoveFromCart(ctx, author.ID.String(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotInCart)
}

func TestShoppingList(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")
	sugar := seedIngredient(t, db, "Sugar", "g")
	milk := seedIngredient(t, db, "Milk", "ml")

	first, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{
			{ID: flour.ID.String(), Amount: 200},
			{ID: sugar.ID.String(), Amount: 50},
		},
	), author.ID.String())
	require.NoError(t, err)

	second, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{
			{ID: flour.ID.String(), Amount: 100},
			{ID: milk.ID.String(), Amount: 300},
		},
	), author.ID.String())
	require.NoError(t, err)

	_, err = service.AddToCart(ctx, author.ID.String(), first.ID)
	require.NoError(t, err)
	_, err = service.AddToCart(ctx, author.ID.String(), second.ID)
	require.NoError(t, err)

	items, err := service.BuildShoppingList(ctx, author.ID.String())
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, domain.ShoppingListItem{Name: "Flour", TotalAmount: 300, MeasurementUnit: "g"}, items[0])
	assert.Equal(t, domain.ShoppingListItem{Name: "Milk", TotalAmount: 300, MeasurementUnit: "ml"}, items[1])
	assert.Equal(t, domain.ShoppingListItem{Name: "Sugar", TotalAmount: 50, MeasurementUnit: "g"}, items[2])

	report := service.RenderShoppingList(items)
	assert.Equal(t, "1. Flour - 300 g.\n2. Milk - 300 ml.\n3. Sugar - 50 g.", report)
}

func TestShoppingListEmptyCart(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, db, "reader@example.com", "reader")

	items, err := service.BuildShoppingList(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "", service.RenderShoppingList(items))
}

func TestShortLink(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	flour := seedIngredient(t, db, "Flour", "g")

	created, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), author.ID.String())
	require.NoError(t, err)

	link, err := service.GetShortLink(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, link.ShortLink, "http://localhost:8080/s/")

	var recipe entities.Recipe
	require.NoError(t, db.Where("id = ?", created.ID).First(&recipe).Error)

	resolved, err := service.ResolveShortLink(ctx, recipe.ShortLink.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	_, err = service.ResolveShortLink(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrShortLinkNotFound)

	_, err = service.ResolveShortLink(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrShortLinkNotFound)
}

func TestGetRecipesFilters(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "cook")
	baker := seedUser(t, db, "baker@example.com", "baker")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	dinner := seedTag(t, db, "Dinner", "dinner")
	flour := seedIngredient(t, db, "Flour", "g")

	pancakes, err := service.CreateRecipe(ctx, createRequest(
		[]string{breakfast.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 100}},
	), cook.ID.String())
	require.NoError(t, err)

	stewReq := createRequest(
		[]string{dinner.ID.String()},
		[]domain.RecipeIngredientRequest{{ID: flour.ID.String(), Amount: 20}},
	)
	stewReq.Name = "Stew"
	stew, err := service.CreateRecipe(ctx, stewReq, baker.ID.String())
	require.NoError(t, err)

	_, err = service.AddFavorite(ctx, cook.ID.String(), stew.ID)
	require.NoError(t, err)

	all, count, err := service.GetRecipes(ctx, domain.RecipeFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Len(t, all, 2)

	byAuthor, count, err := service.GetRecipes(ctx, domain.RecipeFilter{AuthorID: cook.ID.String()}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, pancakes.ID, byAuthor[0].ID)

	byTag, count, err := service.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"dinner"}}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, byTag, 1)
	assert.Equal(t, stew.ID, byTag[0].ID)

	favorited, count, err := service.GetRecipes(ctx, domain.RecipeFilter{
		Favorited: true,
		UserID:    cook.ID.String(),
	}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, favorited, 1)
	assert.Equal(t, stew.ID, favorited[0].ID)
	assert.True(t, favorited[0].IsFavorited)

	// anonymous callers: the favorited flag is a no-op
	_, count, err = service.GetRecipes(ctx, domain.RecipeFilter{Favorited: true}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestGetRecipesLimitCap(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db, "cook@example.com", "cook")
	for i := 0; i < 8; i++ {
		require.NoError(t, db.Create(&entities.Recipe{
			ID:          uuid.New(),
			AuthorID:    author.ID,
			Name:        "Recipe",
			Text:        "x",
			CookingTime: 5,
			ShortLink:   uuid.New(),
		}).Error)
	}

	// an oversized limit is clamped to the configured page size
	recipes, count, err := service.GetRecipes(ctx, domain.RecipeFilter{}, 1, 1000)
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
	assert.Len(t, recipes, 6)

	rest, _, err := service.GetRecipes(ctx, domain.RecipeFilter{}, 2, 1000)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
