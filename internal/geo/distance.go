package geo

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Mean Earth radius in km; the great-circle approximation is fine at
// neighborhood scale.
const earthRadiusKm = 6371.0

// FurtherRingKm is the width of the "second ring" shown past the requested
// radius so users get a graceful degrade instead of an empty page.
const FurtherRingKm = 30.0

// Haversine returns the great-circle distance between two coordinates in km.
func Haversine(a, b Coordinate) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Item is the slice element the distance engine ranks. Callers key their own
// records by ID and join the results back.
type Item struct {
	ID        uuid.UUID
	Coord     *Coordinate
	CreatedAt time.Time
}

// RankedItem is an Item annotated with its distance from a chosen center.
// DistanceKm is nil when the item carries no coordinate or no center was
// available: "unknown", which is not the same thing as a true zero-distance
// match. Unknown-distance items are treated as local.
type RankedItem struct {
	Item
	DistanceKm *float64
}

// Annotate computes each item's distance from center. A nil center yields
// all-unknown distances (the degraded "no center" path).
func Annotate(items []Item, center *Coordinate) []RankedItem {
	out := make([]RankedItem, 0, len(items))
	for _, it := range items {
		ranked := RankedItem{Item: it}
		if center != nil && it.Coord != nil {
			d := Haversine(*center, *it.Coord)
			ranked.DistanceKm = &d
		}
		out = append(out, ranked)
	}
	return out
}

// TierItems partitions ranked items into a near tier (distance <= radius) and
// a further ring (radius < distance <= radius+30). Items beyond the ring are
// dropped. Unknown-distance items count as near. A radius <= 0 disables
// tiering: everything lands in near.
func TierItems(items []RankedItem, radiusKm float64) (near, further []RankedItem) {
	near = make([]RankedItem, 0, len(items))
	further = make([]RankedItem, 0)

	if radiusKm <= 0 {
		near = append(near, items...)
		return near, further
	}

	for _, it := range items {
		switch {
		case it.DistanceKm == nil:
			near = append(near, it)
		case *it.DistanceKm <= radiusKm:
			near = append(near, it)
		case *it.DistanceKm <= radiusKm+FurtherRingKm:
			further = append(further, it)
		}
	}
	return near, further
}

// SortByDistance orders ascending by distance; unknown-distance items sort
// first (local). Stable so equal distances keep fetch order.
func SortByDistance(items []RankedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].DistanceKm, items[j].DistanceKm
		if di == nil {
			return dj != nil
		}
		if dj == nil {
			return false
		}
		return *di < *dj
	})
}

// SortByRecency orders newest first, for requests with no usable center.
func SortByRecency(items []RankedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
