package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/KiezTask/KT-Backend/internal/geo"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Diagnostic: what does the system know about one postal code?
// Usage: go run ./cmd/check_plz 10115

func main() {
	godotenv.Load(".env.local")

	if len(os.Args) < 2 {
		log.Fatal("usage: check_plz <postal-code>")
	}
	plz := os.Args[1]
	if !geo.IsPLZ(plz) {
		log.Fatalf("'%s' is not a valid postal code", plz)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Postal code %s\n\n", plz)

	resolver := geo.NewDefaultResolver(db)
	coord, err := resolver.Resolve(ctx, plz)
	if err != nil {
		fmt.Printf("Coordinate: unresolved (%v)\n", err)
	} else {
		fmt.Printf("Coordinate: %.5f, %.5f\n", coord.Lat, coord.Lng)
	}

	var verified int64
	if err := db.WithContext(ctx).
		Table("app_auth.users").
		Where("postal_code = ? AND is_verified = ?", plz, true).
		Count(&verified).Error; err != nil {
		log.Fatalf("Count verified users: %v", err)
	}
	fmt.Printf("Verified users: %d\n", verified)

	var rec struct{ ActivatedAt time.Time }
	err = db.WithContext(ctx).
		Table("activation.area_activations").
		Select("activated_at").
		Where("postal_code = ?", plz).
		Take(&rec).Error
	switch {
	case err == nil:
		fmt.Printf("Area status: active since %s\n", rec.ActivatedAt.Format(time.RFC3339))
	case errors.Is(err, gorm.ErrRecordNotFound):
		fmt.Println("Area status: not yet active")
	default:
		log.Fatalf("Read activation record: %v", err)
	}

	var openTasks int64
	if err := db.WithContext(ctx).
		Table("tasks.tasks AS t").
		Joins("JOIN app_auth.users u ON u.user_id = t.creator_id").
		Where("t.status = ? AND u.postal_code = ?", "open", plz).
		Count(&openTasks).Error; err != nil {
		log.Fatalf("Count open tasks: %v", err)
	}
	fmt.Printf("Open tasks: %d\n", openTasks)
}
