package activation

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/KiezTask/KT-Backend/internal/geo"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// GetAreaStatus answers the hot-path "is my area live yet" query. Read-only;
// rendered on every page, so responses are never CDN/browser cached.
func GetAreaStatus(w http.ResponseWriter, r *http.Request) {
	plz := chi.URLParam(r, "plz")
	if !geo.IsPLZ(plz) {
		http.Error(w, "Missing or invalid plz parameter", http.StatusBadRequest)
		return
	}

	status := gate.Status(r.Context(), plz)

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	writeJSON(w, status)
}

// OnUserVerified is the event hook fired after an email verification. The
// verified user's postal code is re-evaluated and may transition to active.
func OnUserVerified(ctx context.Context, postalCode string) {
	if gate == nil {
		return
	}
	status, err := gate.CheckAndActivate(ctx, postalCode)
	if err != nil {
		// Activation not confirmed; the next verification event retries.
		log.Printf("[activation] check %s: %v", postalCode, err)
		return
	}
	if !status.IsActive {
		log.Printf("[activation] area %s at %d/%d verified", postalCode, status.VerifiedCount, status.Threshold)
	}
}
