package settings

import (
	"log"
	"os"

	"github.com/KiezTask/KT-Backend/internal/db"
	"github.com/goccy/go-yaml"
	"gorm.io/gorm/clause"
)

// seedFile is the optional defaults file loaded at startup.
//
//	settings:
//	  area_activation_threshold: "10"
type seedFile struct {
	Settings map[string]string `yaml:"settings"`
}

func Init() {
	if err := db.EnsureSchema(db.DB, "settings"); err != nil {
		log.Fatal("Failed to ensure schema settings: ", err)
	}

	if err := db.DB.AutoMigrate(&Setting{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	seedDefaults()
}

// seedDefaults inserts defaults from settings.yaml when present. Inserts are
// conflict-ignoring so operator edits are never overwritten on restart.
func seedDefaults() {
	path := os.Getenv("SETTINGS_FILE")
	if path == "" {
		path = "settings.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[settings] read %s: %v", path, err)
		}
		return
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Printf("[settings] parse %s: %v", path, err)
		return
	}

	for key, value := range seed.Settings {
		row := Setting{Key: key, Value: value}
		if err := db.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			log.Printf("[settings] seed %s: %v", key, err)
		}
	}
	log.Printf("[settings] seeded %d default(s) from %s", len(seed.Settings), path)
}
