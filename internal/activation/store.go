package activation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. User lookups go through the
// app_auth schema directly rather than importing the auth package, which
// would cycle (auth triggers this package on verification).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CountVerified(ctx context.Context, postalCode string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Table("app_auth.users").
		Where("postal_code = ? AND is_verified = ?", postalCode, true).
		Count(&n).Error
	return int(n), err
}

func (s *GormStore) HasRecord(ctx context.Context, postalCode string) (bool, error) {
	var rec ActivationRecord
	err := s.db.WithContext(ctx).First(&rec, "postal_code = ?", postalCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateRecord is the exactly-once gate: a unique-keyed insert with a
// conflict no-op. RowsAffected tells concurrent callers apart — 1 means this
// caller created the record, 0 means someone else already had.
func (s *GormStore) CreateRecord(ctx context.Context, postalCode string) (bool, error) {
	rec := ActivationRecord{PostalCode: postalCode, ActivatedAt: time.Now()}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "postal_code"}},
		DoNothing: true,
	}).Create(&rec)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) VerifiedRecipients(ctx context.Context, postalCode string) ([]string, error) {
	var emails []string
	err := s.db.WithContext(ctx).
		Table("app_auth.users").
		Where("postal_code = ? AND is_verified = ?", postalCode, true).
		Pluck("email", &emails).Error
	return emails, err
}
