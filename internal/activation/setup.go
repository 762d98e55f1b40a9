package activation

import (
	"context"
	"log"

	"github.com/KiezTask/KT-Backend/internal/db"
	"github.com/KiezTask/KT-Backend/internal/notify"
	"github.com/KiezTask/KT-Backend/internal/settings"
)

// gate is the active activation gate, initialized in Init().
var gate *Gate

func Init() {
	if err := db.EnsureSchema(db.DB, "activation"); err != nil {
		log.Fatal("Failed to ensure schema activation: ", err)
	}

	if err := db.DB.AutoMigrate(&ActivationRecord{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	gate = NewGate(NewGormStore(db.DB), notify.LogSender{}, func() int {
		return settings.GetInt(ThresholdKey, DefaultThreshold)
	})
}

// AreaStatus exposes the gate's read-only status query to other packages.
func AreaStatus(ctx context.Context, postalCode string) Status {
	if gate == nil {
		return Status{PostalCode: postalCode, Threshold: DefaultThreshold, Needed: DefaultThreshold}
	}
	return gate.Status(ctx, postalCode)
}
