package ingredient

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"gorm.io/gorm"

	"recipehub/domain"
	"recipehub/entities"
)

type (
	IngredientService interface {
		GetIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientResponse, error)
		GetIngredientDetail(ctx context.Context, ingredientID string) (domain.IngredientResponse, error)
		// ImportCSV reads two-column (name, measurement unit) rows, skipping
		// the header, and upserts each pair. With replace set, catalog rows
		// absent from the file are deleted afterwards.
		ImportCSV(ctx context.Context, r io.Reader, replace bool) (domain.ImportIngredientsResponse, error)
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepository: ingredientRepository}
}

func (s *ingredientService) GetIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.ingredientRepository.GetIngredients(ctx, namePrefix)
	if err != nil {
		return nil, err
	}

	result := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		result = append(result, toIngredientResponse(ing))
	}
	return result, nil
}

func (s *ingredientService) GetIngredientDetail(ctx context.Context, ingredientID string) (domain.IngredientResponse, error) {
	ing, err := s.ingredientRepository.GetIngredientByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return toIngredientResponse(ing), nil
}

func (s *ingredientService) ImportCSV(ctx context.Context, r io.Reader, replace bool) (domain.ImportIngredientsResponse, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return domain.ImportIngredientsResponse{}, err
	}
	if len(rows) > 0 {
		// first row is the header
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return domain.ImportIngredientsResponse{}, domain.ErrEmptyImportFile
	}

	seen := make(map[string]bool, len(rows))
	imported := 0
	for _, row := range rows {
		if len(row) != 2 {
			return domain.ImportIngredientsResponse{}, domain.ErrMalformedCSVRow
		}
		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			return domain.ImportIngredientsResponse{}, domain.ErrMalformedCSVRow
		}

		if _, err := s.ingredientRepository.UpsertIngredient(ctx, name, unit); err != nil {
			return domain.ImportIngredientsResponse{}, err
		}
		seen[name+"\x00"+unit] = true
		imported++
	}

	deleted := int64(0)
	if replace {
		existing, err := s.ingredientRepository.GetAllIngredients(ctx)
		if err != nil {
			return domain.ImportIngredientsResponse{}, err
		}
		var stale []string
		for _, ing := range existing {
			if !seen[ing.Name+"\x00"+ing.MeasurementUnit] {
				stale = append(stale, ing.ID.String())
			}
		}
		deleted, err = s.ingredientRepository.DeleteIngredientsByIDs(ctx, stale)
		if err != nil {
			return domain.ImportIngredientsResponse{}, err
		}
	}

	return domain.ImportIngredientsResponse{
		Imported: imported,
		Deleted:  int(deleted),
	}, nil
}

func toIngredientResponse(ing *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ing.ID.String(),
		Name:            ing.Name,
		MeasurementUnit: ing.MeasurementUnit,
	}
}
