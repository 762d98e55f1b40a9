package geo

import "github.com/google/uuid"

// MarkerGroup is one visual map marker: all items sharing an exact
// coordinate pair plus how many there are. Coordinates are postal-code
// centroids, so items from the same postal code always land in the same
// group; no proximity merging is done beyond exact equality.
type MarkerGroup struct {
	Coord   Coordinate  `json:"coord"`
	Count   int         `json:"count"`
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// Cluster groups ranked items by exact (lat, lng) equality, preserving
// first-seen order. Items without a coordinate are not mappable and are
// skipped.
func Cluster(items []RankedItem) []MarkerGroup {
	index := make(map[Coordinate]int, len(items))
	groups := make([]MarkerGroup, 0, len(items))

	for _, it := range items {
		if it.Coord == nil {
			continue
		}
		key := *it.Coord
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, MarkerGroup{Coord: key})
			i = len(groups) - 1
		}
		groups[i].Count++
		groups[i].ItemIDs = append(groups[i].ItemIDs, it.ID)
	}
	return groups
}
