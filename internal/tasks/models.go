package tasks

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Task is a neighborhood help request. Its map location is its creator's
// postal-code centroid, never a street address.
type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CreatorID   string         `json:"creator_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Status      string         `json:"status" gorm:"default:'open';index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks.tasks"
}

// TaskRecord is a task row joined with its owner's postal code, the shape
// discovery works on.
type TaskRecord struct {
	ID         uuid.UUID      `json:"id"`
	CreatorID  string         `json:"creator_id"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[]"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	PostalCode string         `json:"postal_code"`
}
