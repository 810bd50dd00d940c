package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
)

// seedFile mirrors the reference-data fixture layout: tags carry name,
// color and slug; ingredients carry name and measurement unit.
type seedFile struct {
	Tags []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	} `json:"tags"`
	Ingredients []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	} `json:"ingredients"`
}

func main() {
	path := flag.String("file", "data/reference.json", "path to the reference data file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *path, err)
	}
	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Fatalf("Failed to parse %s: %v", *path, err)
	}

	for _, t := range data.Tags {
		tag := models.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			log.Fatalf("Failed to seed tag %q: %v", t.Name, err)
		}
	}
	log.Printf("Seeded %d tags", len(data.Tags))

	for _, i := range data.Ingredients {
		ingredient := models.Ingredient{Name: i.Name, MeasurementUnit: i.MeasurementUnit}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error; err != nil {
			log.Fatalf("Failed to seed ingredient %q: %v", i.Name, err)
		}
	}
	log.Printf("Seeded %d ingredients", len(data.Ingredients))
}
