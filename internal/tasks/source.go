package tasks

import (
	"context"

	"gorm.io/gorm"
)

// GormSource fetches open tasks joined with their owners' postal codes.
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) OpenTasks(ctx context.Context) ([]TaskRecord, error) {
	var rows []TaskRecord
	err := s.db.WithContext(ctx).
		Table("tasks.tasks AS t").
		Select("t.id, t.creator_id, t.title, t.category, t.tags, t.status, t.created_at, u.postal_code").
		Joins("JOIN app_auth.users u ON u.user_id = t.creator_id").
		Where("t.status = ?", "open").
		Order("t.created_at DESC").
		Scan(&rows).Error
	return rows, err
}
