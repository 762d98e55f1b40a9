package geo

import (
	"context"
	"errors"
	"log"
	"regexp"
)

// ErrNotFound is returned when a postal code cannot be resolved to a
// coordinate, whether because the input is malformed or because the external
// geocoder had no answer. Callers must treat it as "proceed without a
// coordinate", never as a fatal error.
var ErrNotFound = errors.New("postal code not found")

var plzPattern = regexp.MustCompile(`^\d{5}$`)

// IsPLZ reports whether s is a well-formed German postal code.
func IsPLZ(s string) bool {
	return plzPattern.MatchString(s)
}

// CoordinateStore is the persistence surface the resolver needs.
type CoordinateStore interface {
	Find(ctx context.Context, postalCode string) (Coordinate, bool, error)
	CreateIfAbsent(ctx context.Context, postalCode string, coord Coordinate) error
}

// Geocoder resolves a postal code through an external provider.
type Geocoder interface {
	Lookup(ctx context.Context, postalCode string) (Coordinate, error)
}

// Resolver answers postal-code → coordinate lookups with a self-healing
// store: store hit is the common case, misses fall through to the external
// geocoder and persist the answer for the next caller. Provider failures are
// not cached as negative results; every subsequent request retries.
type Resolver struct {
	store    CoordinateStore
	geocoder Geocoder
}

func NewResolver(store CoordinateStore, geocoder Geocoder) *Resolver {
	return &Resolver{store: store, geocoder: geocoder}
}

// Resolve returns the centroid for a postal code. Invalid input returns
// ErrNotFound without touching the store or the network.
func (r *Resolver) Resolve(ctx context.Context, postalCode string) (Coordinate, error) {
	if !IsPLZ(postalCode) {
		return Coordinate{}, ErrNotFound
	}

	coord, ok, err := r.store.Find(ctx, postalCode)
	if err != nil {
		return Coordinate{}, err
	}
	if ok {
		return coord, nil
	}

	if r.geocoder == nil {
		return Coordinate{}, ErrNotFound
	}

	coord, err = r.geocoder.Lookup(ctx, postalCode)
	if err != nil {
		log.Printf("[geo] geocode plz=%s failed: %v", postalCode, err)
		return Coordinate{}, ErrNotFound
	}

	// Concurrent resolutions of the same code are expected; either writer's
	// value is acceptable, so a conflict is a no-op rather than an error.
	if err := r.store.CreateIfAbsent(ctx, postalCode, coord); err != nil {
		return Coordinate{}, err
	}

	return coord, nil
}

// ResolveAll resolves the distinct set of postal codes once and returns the
// subset that could be resolved. Used by discovery to avoid issuing one
// geocode call per item.
func (r *Resolver) ResolveAll(ctx context.Context, postalCodes []string) map[string]Coordinate {
	out := make(map[string]Coordinate, len(postalCodes))
	seen := make(map[string]struct{}, len(postalCodes))
	for _, plz := range postalCodes {
		if _, dup := seen[plz]; dup {
			continue
		}
		seen[plz] = struct{}{}

		coord, err := r.Resolve(ctx, plz)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Printf("[geo] resolve plz=%s: %v", plz, err)
			}
			continue
		}
		out[plz] = coord
	}
	return out
}
