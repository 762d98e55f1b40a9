package tasks

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/KiezTask/KT-Backend/internal/db"
	"github.com/KiezTask/KT-Backend/internal/utils"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// DiscoverTasks serves the browse-nearby page. Logged-in users center on
// their own postal code; anonymous callers may pass ?plz=. A ?q= search term
// that is itself a postal code overrides both. ?radius= bounds the near tier
// in km; absent means unbounded.
func DiscoverTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius := 0.0
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid radius parameter", http.StatusBadRequest)
			return
		}
		radius = parsed
	}

	userPLZ := q.Get("plz")
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		var row struct{ PostalCode string }
		err := db.DB.WithContext(r.Context()).
			Table("app_auth.users").
			Select("postal_code").
			Where("user_id = ?", userID).
			Take(&row).Error
		if err != nil {
			log.Printf("[tasks] load user %s: %v", userID, err)
		} else if row.PostalCode != "" {
			userPLZ = row.PostalCode
		}
	}

	result, err := discovery.Discover(r.Context(), DiscoverParams{
		UserPLZ:  userPLZ,
		Search:   q.Get("q"),
		RadiusKm: radius,
	})
	if err != nil {
		log.Printf("[tasks] discover failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	writeJSON(w, result)
}
