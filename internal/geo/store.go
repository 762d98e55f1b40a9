package geo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed CoordinateStore.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Find(ctx context.Context, postalCode string) (Coordinate, bool, error) {
	var row PostalCoordinate
	err := s.db.WithContext(ctx).First(&row, "postal_code = ?", postalCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Coordinate{}, false, nil
	}
	if err != nil {
		return Coordinate{}, false, err
	}
	return Coordinate{Lat: row.Lat, Lng: row.Lng}, true, nil
}

// CreateIfAbsent persists a freshly geocoded centroid. The primary key plus
// DoNothing makes concurrent writers race safely: the first insert wins and
// the rest are silent no-ops.
func (s *Store) CreateIfAbsent(ctx context.Context, postalCode string, coord Coordinate) error {
	row := PostalCoordinate{PostalCode: postalCode, Lat: coord.Lat, Lng: coord.Lng}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "postal_code"}},
		DoNothing: true,
	}).Create(&row).Error
}
