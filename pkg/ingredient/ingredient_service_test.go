package ingredient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"recipehub/domain"
	"recipehub/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return db
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()

	ing := &entities.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func TestGetIngredientsPrefixFilter(t *testing.T) {
	db := newTestDB(t)
	service := NewIngredientService(NewIngredientRepository(db))
	ctx := context.Background()

	seedIngredient(t, db, "Sugar", "g")
	seedIngredient(t, db, "sunflower oil", "ml")
	seedIngredient(t, db, "Salt", "g")

	res, err := service.GetIngredients(ctx, "su")
	require.NoError(t, err)

	require.Len(t, res, 2)
	// prefix match is case-insensitive, results sorted by name
	names := []string{res[0].Name, res[1].Name}
	assert.Contains(t, names, "Sugar")
	assert.Contains(t, names, "sunflower oil")

	all, err := service.GetIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := service.GetIngredients(ctx, "pepper")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetIngredientDetail(t *testing.T) {
	db := newTestDB(t)
	service := NewIngredientService(NewIngredientRepository(db))
	ctx := context.Background()

	salt := seedIngredient(t, db, "Salt", "g")

	res, err := service.GetIngredientDetail(ctx, salt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Salt", res.Name)
	assert.Equal(t, "g", res.MeasurementUnit)

	_, err = service.GetIngredientDetail(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}

func TestImportCSV(t *testing.T) {
	db := newTestDB(t)
	service := NewIngredientService(NewIngredientRepository(db))
	ctx := context.Background()

	csvFile := "name,measurement_unit\nFlour,g\nMilk,ml\n"

	res, err := service.ImportCSV(ctx, strings.NewReader(csvFile), false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Deleted)

	// importing the same file again must not duplicate catalog rows
	_, err = service.ImportCSV(ctx, strings.NewReader(csvFile), false)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&entities.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestImportCSVReplace(t *testing.T) {
	db := newTestDB(t)
	service := NewIngredientService(NewIngredientRepository(db))
	ctx := context.Background()

	seedIngredient(t, db, "Stale", "g")

	res, err := service.ImportCSV(ctx, strings.NewReader("name,measurement_unit\nFlour,g\n"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Deleted)

	var names []string
	require.NoError(t, db.Model(&entities.Ingredient{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"Flour"}, names)
}

func TestImportCSVRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	service := NewIngredientService(NewIngredientRepository(db))
	ctx := context.Background()

	_, err := service.ImportCSV(ctx, strings.NewReader(""), false)
	assert.ErrorIs(t, err, domain.ErrEmptyImportFile)

	_, err = service.ImportCSV(ctx, strings.NewReader("name,measurement_unit\n"), false)
	assert.ErrorIs(t, err, domain.ErrEmptyImportFile)

	_, err = service.ImportCSV(ctx, strings.NewReader("name,measurement_unit\nFlour\n"), false)
	assert.ErrorIs(t, err, domain.ErrMalformedCSVRow)

	_, err = service.ImportCSV(ctx, strings.NewReader("name,measurement_unit\nFlour,\n"), false)
	assert.ErrorIs(t, err, domain.ErrMalformedCSVRow)
}
