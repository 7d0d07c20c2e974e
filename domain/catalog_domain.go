package domain

import (
	"errors"
)

var (
	MessageSuccessGetTags           = "success get tags"
	MessageSuccessGetTagDetail      = "success get tag detail"
	MessageSuccessCreateTag         = "tag created successfully"
	MessageSuccessGetIngredients    = "success get ingredients"
	MessageSuccessGetIngredient     = "success get ingredient detail"
	MessageSuccessImportIngredients = "ingredients imported successfully"

	MessageFailedGetTags           = "failed to get tags"
	MessageFailedCreateTag         = "failed to create tag"
	MessageFailedGetIngredients    = "failed to get ingredients"
	MessageFailedImportIngredients = "failed to import ingredients"

	ErrTagNotFound        = errors.New("tag not found")
	ErrTagNameTaken       = errors.New("tag name already taken")
	ErrTagSlugTaken       = errors.New("tag slug already taken")
	ErrInvalidSlug        = errors.New("slug may contain only letters, digits, hyphen and underscore")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient already exists")
	ErrEmptyImportFile    = errors.New("import file has no data rows")
	ErrMalformedCSVRow    = errors.New("csv row must have exactly two columns: name, measurement unit")
)

type (
	CreateTagRequest struct {
		Name string `json:"name" validate:"required,max=150"`
		Slug string `json:"slug" validate:"required,max=50"`
	}

	TagResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	ImportIngredientsResponse struct {
		Imported int `json:"imported"`
		Deleted  int `json:"deleted"`
	}
)
