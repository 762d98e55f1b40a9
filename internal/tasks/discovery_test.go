package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KiezTask/KT-Backend/internal/activation"
	"github.com/KiezTask/KT-Backend/internal/geo"
	"github.com/KiezTask/KT-Backend/internal/tasks"
	"github.com/google/uuid"
)

// fakeResolver resolves from a fixed map and counts calls, so tests can
// assert resolution is batched rather than per-item.
type fakeResolver struct {
	coords       map[string]geo.Coordinate
	resolveCalls int
	batchCalls   int
}

func (r *fakeResolver) Resolve(ctx context.Context, plz string) (geo.Coordinate, error) {
	r.resolveCalls++
	if c, ok := r.coords[plz]; ok {
		return c, nil
	}
	return geo.Coordinate{}, geo.ErrNotFound
}

func (r *fakeResolver) ResolveAll(ctx context.Context, plzs []string) map[string]geo.Coordinate {
	r.batchCalls++
	out := make(map[string]geo.Coordinate)
	for _, plz := range plzs {
		if c, ok := r.coords[plz]; ok {
			out[plz] = c
		}
	}
	return out
}

type fakeSource struct {
	records []tasks.TaskRecord
	err     error
}

func (s fakeSource) OpenTasks(ctx context.Context) ([]tasks.TaskRecord, error) {
	return s.records, s.err
}

func record(plz string, age time.Duration) tasks.TaskRecord {
	return tasks.TaskRecord{
		ID:         uuid.New(),
		Title:      "task in " + plz,
		Status:     "open",
		PostalCode: plz,
		CreatedAt:  time.Now().Add(-age),
	}
}

func staticStatus(st activation.Status) tasks.AreaStatusFunc {
	return func(ctx context.Context, plz string) activation.Status {
		st.PostalCode = plz
		return st
	}
}

func TestDiscover_RanksAndTiers(t *testing.T) {
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{
		"10115": {Lat: 52.53, Lng: 13.38}, // user's area
		"10117": {Lat: 52.51, Lng: 13.39}, // ~2km away
		"14467": {Lat: 52.40, Lng: 13.05}, // Potsdam, ~27km: further ring
		"80331": {Lat: 48.14, Lng: 11.57}, // Munich: excluded
	}}
	source := fakeSource{records: []tasks.TaskRecord{
		record("80331", 0),
		record("14467", time.Hour),
		record("10117", 2*time.Hour),
		record("10115", 3*time.Hour),
	}}
	d := tasks.NewDiscovery(resolver, source, staticStatus(activation.Status{IsActive: true, Threshold: 10, VerifiedCount: 12}))

	result, err := d.Discover(context.Background(), tasks.DiscoverParams{UserPLZ: "10115", RadiusKm: 10})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if result.Center.Source != geo.CenterSourceUser {
		t.Errorf("expected user-centered map, got %s", result.Center.Source)
	}
	if len(result.Near) != 2 {
		t.Fatalf("expected 2 near tasks, got %d", len(result.Near))
	}
	if result.Near[0].PostalCode != "10115" {
		t.Errorf("expected nearest task first, got %s", result.Near[0].PostalCode)
	}
	if len(result.Further) != 1 || result.Further[0].PostalCode != "14467" {
		t.Errorf("expected the Potsdam task in the further ring, got %+v", result.Further)
	}
	for _, tw := range result.Near {
		if tw.DistanceKm == nil {
			t.Errorf("expected distance annotated for %s", tw.PostalCode)
		}
	}
	// Munich is beyond R+30 and appears nowhere
	total := len(result.Near) + len(result.Further)
	if total != 3 {
		t.Errorf("expected the Munich task excluded, got %d tiered tasks", total)
	}

	if result.Area == nil || !result.Area.IsActive || result.Area.PostalCode != "10115" {
		t.Errorf("expected active area status for 10115, got %+v", result.Area)
	}
}

func TestDiscover_BatchesResolution(t *testing.T) {
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{
		"10115": {Lat: 52.53, Lng: 13.38},
	}}
	records := make([]tasks.TaskRecord, 0, 6)
	for i := 0; i < 6; i++ {
		records = append(records, record("10115", time.Duration(i)*time.Minute))
	}
	d := tasks.NewDiscovery(resolver, fakeSource{records: records}, nil)

	if _, err := d.Discover(context.Background(), tasks.DiscoverParams{UserPLZ: "10115"}); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if resolver.batchCalls != 1 {
		t.Errorf("expected one batched resolution, got %d", resolver.batchCalls)
	}
	// Center selection may resolve the user's code once; per-item calls
	// would show up as one call per task.
	if resolver.resolveCalls > 1 {
		t.Errorf("expected at most one direct resolution (center), got %d", resolver.resolveCalls)
	}
}

func TestDiscover_SearchTermRecenters(t *testing.T) {
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{
		"10115": {Lat: 52.53, Lng: 13.38},
		"80331": {Lat: 48.14, Lng: 11.57},
	}}
	d := tasks.NewDiscovery(resolver, fakeSource{}, staticStatus(activation.Status{}))

	result, err := d.Discover(context.Background(), tasks.DiscoverParams{UserPLZ: "10115", Search: "80331"})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if result.Center.Source != geo.CenterSourceSearch {
		t.Errorf("expected search-centered map, got %s", result.Center.Source)
	}
	if result.Area == nil || result.Area.PostalCode != "80331" {
		t.Errorf("expected area status for the searched code, got %+v", result.Area)
	}
}

// TestDiscover_DegradesWithoutCoordinates: geocoding entirely unavailable
// still renders the page — default center, no distances, newest first.
func TestDiscover_DegradesWithoutCoordinates(t *testing.T) {
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{}}
	source := fakeSource{records: []tasks.TaskRecord{
		record("10115", 2*time.Hour),
		record("10117", time.Minute),
	}}
	d := tasks.NewDiscovery(resolver, source, nil)

	result, err := d.Discover(context.Background(), tasks.DiscoverParams{UserPLZ: "10115", RadiusKm: 10})
	if err != nil {
		t.Fatalf("expected graceful degrade, got %v", err)
	}

	if result.Center.Source != geo.CenterSourceDefault {
		t.Errorf("expected default center, got %s", result.Center.Source)
	}
	if result.Center.Coordinate != geo.DefaultCenter {
		t.Errorf("expected national centroid, got %+v", result.Center.Coordinate)
	}
	if len(result.Near) != 2 || len(result.Further) != 0 {
		t.Fatalf("expected all tasks untiered in near, got near=%d further=%d", len(result.Near), len(result.Further))
	}
	if result.Near[0].PostalCode != "10117" {
		t.Error("expected newest task first without a center")
	}
	for _, tw := range result.Near {
		if tw.DistanceKm != nil {
			t.Errorf("expected no distances without a center, got %f", *tw.DistanceKm)
		}
	}
	if len(result.Clusters) != 0 {
		t.Errorf("expected no clusters without coordinates, got %d", len(result.Clusters))
	}
}

func TestDiscover_ClustersSamePostalCode(t *testing.T) {
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{
		"10115": {Lat: 52.53, Lng: 13.38},
		"10117": {Lat: 52.51, Lng: 13.39},
	}}
	source := fakeSource{records: []tasks.TaskRecord{
		record("10115", 0),
		record("10115", time.Minute),
		record("10117", time.Hour),
	}}
	d := tasks.NewDiscovery(resolver, source, nil)

	result, err := d.Discover(context.Background(), tasks.DiscoverParams{UserPLZ: "10115"})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(result.Clusters) != 2 {
		t.Fatalf("expected 2 marker groups, got %d", len(result.Clusters))
	}
	var sizes []int
	for _, g := range result.Clusters {
		sizes = append(sizes, g.Count)
	}
	if !((sizes[0] == 2 && sizes[1] == 1) || (sizes[0] == 1 && sizes[1] == 2)) {
		t.Errorf("expected groups of 2 and 1, got %v", sizes)
	}
}

func TestDiscover_SourceErrorPropagates(t *testing.T) {
	d := tasks.NewDiscovery(&fakeResolver{}, fakeSource{err: errors.New("db down")}, nil)

	if _, err := d.Discover(context.Background(), tasks.DiscoverParams{}); err == nil {
		t.Error("expected task-store failure to propagate")
	}
}
