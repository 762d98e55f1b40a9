package settings

import "time"

// Setting is one tunable runtime value. Operators edit rows directly; code
// only reads them (with a default) so a missing or mangled row can never
// take the service down.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings.settings"
}
