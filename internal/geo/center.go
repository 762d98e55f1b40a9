package geo

import (
	"context"
	"strings"
)

// DefaultCenter is the national fallback centroid (Berlin).
var DefaultCenter = Coordinate{Lat: 52.52, Lng: 13.405}

type CenterSource string

const (
	CenterSourceSearch  CenterSource = "search"
	CenterSourceUser    CenterSource = "user"
	CenterSourceItem    CenterSource = "item"
	CenterSourceDefault CenterSource = "default"
)

// Center is the map reference point for a discovery request plus where it
// came from.
type Center struct {
	Coordinate
	Source CenterSource `json:"source"`
}

// Resolved reports whether the center came from a real signal rather than
// the national fallback. Distance sorting is only meaningful when true.
func (c Center) Resolved() bool {
	return c.Source != CenterSourceDefault
}

// PLZResolver is the slice of Resolver that center selection needs.
type PLZResolver interface {
	Resolve(ctx context.Context, postalCode string) (Coordinate, error)
}

// SelectCenter picks the map center for one request. Priority: a search term
// that is itself a postal code (lets users search near a PLZ other than
// their own), then the requesting user's postal code, then the first item
// already carrying a coordinate, then DefaultCenter. Evaluated fresh per
// request since user and search term vary per call.
func SelectCenter(ctx context.Context, r PLZResolver, searchTerm, userPLZ string, items []Item) Center {
	if term := strings.TrimSpace(searchTerm); IsPLZ(term) {
		if coord, err := r.Resolve(ctx, term); err == nil {
			return Center{Coordinate: coord, Source: CenterSourceSearch}
		}
	}

	if userPLZ != "" {
		if coord, err := r.Resolve(ctx, userPLZ); err == nil {
			return Center{Coordinate: coord, Source: CenterSourceUser}
		}
	}

	for _, it := range items {
		if it.Coord != nil {
			return Center{Coordinate: *it.Coord, Source: CenterSourceItem}
		}
	}

	return Center{Coordinate: DefaultCenter, Source: CenterSourceDefault}
}
