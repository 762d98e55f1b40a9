package activation

import "time"

// ActivationRecord marks a postal area as live. Presence of a row is the
// sole source of truth for "this area is active": rows are created at most
// once, are immutable, and are never deleted — an area never reverts.
type ActivationRecord struct {
	PostalCode  string    `gorm:"primaryKey;size:5" json:"postal_code"`
	ActivatedAt time.Time `gorm:"not null" json:"activated_at"`
}

func (ActivationRecord) TableName() string {
	return "activation.area_activations"
}

// Status is the ephemeral answer to "how live is this area". Recomputed on
// every request, never cached.
type Status struct {
	PostalCode    string `json:"postal_code"`
	VerifiedCount int    `json:"verified_count"`
	Threshold     int    `json:"threshold"`
	IsActive      bool   `json:"is_active"`
	Needed        int    `json:"needed"`
}
