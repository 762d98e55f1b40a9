package tasks

import (
	"context"
	"strings"

	"github.com/KiezTask/KT-Backend/internal/activation"
	"github.com/KiezTask/KT-Backend/internal/geo"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// TaskSource fetches candidate tasks (with owner postal codes), newest first.
type TaskSource interface {
	OpenTasks(ctx context.Context) ([]TaskRecord, error)
}

// Resolver is the slice of geo.Resolver discovery needs.
type Resolver interface {
	Resolve(ctx context.Context, postalCode string) (geo.Coordinate, error)
	ResolveAll(ctx context.Context, postalCodes []string) map[string]geo.Coordinate
}

// AreaStatusFunc reports activation status for a postal code.
type AreaStatusFunc func(ctx context.Context, postalCode string) activation.Status

// Discovery answers "show me tasks near X" by composing coordinate
// resolution, center selection, distance ranking and marker clustering.
type Discovery struct {
	resolver   Resolver
	source     TaskSource
	areaStatus AreaStatusFunc
}

func NewDiscovery(resolver Resolver, source TaskSource, areaStatus AreaStatusFunc) *Discovery {
	return &Discovery{resolver: resolver, source: source, areaStatus: areaStatus}
}

type DiscoverParams struct {
	// UserPLZ is the requesting user's own postal code, if known.
	UserPLZ string
	// Search is free text; a search term that is itself a postal code
	// recenters the map there.
	Search string
	// RadiusKm bounds the near tier; <= 0 means unbounded.
	RadiusKm float64
}

// TaskWithDistance is a task annotated with its distance from the chosen
// center. DistanceKm is omitted when unknown — absence means "no coordinate
// available", not "right here".
type TaskWithDistance struct {
	TaskRecord
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type DiscoverResult struct {
	Center   geo.Center         `json:"center"`
	Near     []TaskWithDistance `json:"near"`
	Further  []TaskWithDistance `json:"further"`
	Clusters []geo.MarkerGroup  `json:"clusters"`
	Area     *activation.Status `json:"area,omitempty"`
}

// Discover runs one browse request. Coordinate resolution failing entirely
// degrades to recency order with a default map center; only a task-store
// failure is an error.
func (d *Discovery) Discover(ctx context.Context, p DiscoverParams) (DiscoverResult, error) {
	search := norm.NFC.String(strings.TrimSpace(p.Search))

	records, err := d.source.OpenTasks(ctx)
	if err != nil {
		return DiscoverResult{}, err
	}

	// Resolve the distinct postal codes among the candidates once and join
	// the coordinates back; never one geocode call per task.
	plzs := make([]string, 0, len(records))
	for _, rec := range records {
		plzs = append(plzs, rec.PostalCode)
	}
	coords := d.resolver.ResolveAll(ctx, plzs)

	items := make([]geo.Item, 0, len(records))
	byID := make(map[uuid.UUID]TaskRecord, len(records))
	for _, rec := range records {
		it := geo.Item{ID: rec.ID, CreatedAt: rec.CreatedAt}
		if coord, ok := coords[rec.PostalCode]; ok {
			c := coord
			it.Coord = &c
		}
		items = append(items, it)
		byID[rec.ID] = rec
	}

	center := geo.SelectCenter(ctx, d.resolver, search, p.UserPLZ, items)

	var near, further []geo.RankedItem
	if center.Resolved() {
		ranked := geo.Annotate(items, &center.Coordinate)
		near, further = geo.TierItems(ranked, p.RadiusKm)
		geo.SortByDistance(near)
		geo.SortByDistance(further)
	} else {
		// No usable center: no distances, no tiers, newest first.
		near = geo.Annotate(items, nil)
		geo.SortByRecency(near)
	}

	result := DiscoverResult{
		Center:   center,
		Near:     joinTasks(near, byID),
		Further:  joinTasks(further, byID),
		Clusters: geo.Cluster(append(append([]geo.RankedItem{}, near...), further...)),
	}

	if plz := effectivePLZ(search, p.UserPLZ); plz != "" && d.areaStatus != nil {
		st := d.areaStatus(ctx, plz)
		result.Area = &st
	}

	return result, nil
}

func joinTasks(items []geo.RankedItem, byID map[uuid.UUID]TaskRecord) []TaskWithDistance {
	out := make([]TaskWithDistance, 0, len(items))
	for _, it := range items {
		out = append(out, TaskWithDistance{
			TaskRecord: byID[it.ID],
			DistanceKm: it.DistanceKm,
		})
	}
	return out
}

// effectivePLZ is the postal code whose activation status the page shows:
// the searched area when searching by postal code, otherwise the user's own.
func effectivePLZ(search, userPLZ string) string {
	if geo.IsPLZ(search) {
		return search
	}
	if geo.IsPLZ(userPLZ) {
		return userPLZ
	}
	return ""
}
