package settings

import (
	"errors"
	"log"
	"strconv"

	"github.com/KiezTask/KT-Backend/internal/db"
	"gorm.io/gorm"
)

// GetInt returns the integer value stored under key, or def when the row is
// missing, unreadable or unparsable.
func GetInt(key string, def int) int {
	var row Setting
	err := db.DB.First(&row, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[settings] read %s: %v", key, err)
		}
		return def
	}
	return IntOr(row.Value, def)
}

// IntOr parses v as an integer, falling back to def on any parse failure.
func IntOr(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
