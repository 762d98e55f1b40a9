package geo

import (
	"context"
	"log"

	"github.com/KiezTask/KT-Backend/internal/geo/geocoding"
	"gorm.io/gorm"
)

// nominatimGeocoder adapts the geocoding client to the Geocoder interface.
type nominatimGeocoder struct {
	client *geocoding.Client
}

func (g nominatimGeocoder) Lookup(ctx context.Context, postalCode string) (Coordinate, error) {
	result, err := g.client.Search(ctx, postalCode)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: result.Lat, Lng: result.Lng}, nil
}

// NewDefaultResolver wires the gorm store with the env-configured Nominatim
// client. Without geocoder configuration the resolver runs store-only and
// cache misses simply come back as not found.
func NewDefaultResolver(db *gorm.DB) *Resolver {
	client, err := geocoding.NewClient()
	if err != nil {
		log.Printf("[geo] WARNING: failed to initialize geocoding client: %v", err)
		client = nil
	}
	if client == nil {
		log.Printf("[geo] no geocoder configured, resolution runs store-only")
		return NewResolver(NewStore(db), nil)
	}
	return NewResolver(NewStore(db), nominatimGeocoder{client: client})
}
