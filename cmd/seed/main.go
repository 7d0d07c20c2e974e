package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	appconfig "recipehub/cmd/config"
	migration "recipehub/cmd/database/migrate"
	"recipehub/internal/config"
	"recipehub/pkg/ingredient"
)

// Loads the ingredient catalog from a two-column CSV file
// (name, measurement unit). With -replace the file becomes the full
// catalog and rows absent from it are deleted.
func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	replace := flag.Bool("replace", false, "delete catalog rows absent from the file")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := appconfig.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *path, err)
	}
	defer file.Close()

	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	res, err := service.ImportCSV(context.Background(), file, *replace)
	if err != nil {
		log.Fatalf("failed to import ingredients: %v", err)
	}

	fmt.Printf("ingredients imported: %d, deleted: %d\n", res.Imported, res.Deleted)
}
