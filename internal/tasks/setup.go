package tasks

import (
	"log"

	"github.com/KiezTask/KT-Backend/internal/activation"
	"github.com/KiezTask/KT-Backend/internal/db"
	"github.com/KiezTask/KT-Backend/internal/geo"
)

// discovery is the active discovery service, initialized in Init().
var discovery *Discovery

func Init() {
	if err := db.EnsureSchema(db.DB, "tasks"); err != nil {
		log.Fatal("Failed to ensure schema tasks: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(&Task{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	discovery = NewDiscovery(
		geo.NewDefaultResolver(db.DB),
		NewGormSource(db.DB),
		activation.AreaStatus,
	)
}
