package geo

import "time"

// Coordinate is a WGS84 point. Values stored here are postal-code centroids,
// not street addresses.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PostalCoordinate caches the centroid of a postal code. Rows are created
// lazily on first resolution and never deleted; centroids are effectively
// static so rows are not refreshed either.
type PostalCoordinate struct {
	PostalCode string    `gorm:"primaryKey;size:5" json:"postal_code"`
	Lat        float64   `gorm:"not null" json:"lat"`
	Lng        float64   `gorm:"not null" json:"lng"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PostalCoordinate) TableName() string {
	return "geo.postal_coordinates"
}
