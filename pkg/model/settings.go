package model

// Settings is a read-only snapshot of the pricing and business parameters
// for one request. Missing or unreadable source entries fall back to the
// package defaults in pkg/settings.
type Settings struct {
	BaseOccupancy     int     `json:"base_occupancy" bson:"base_occupancy"`
	BaseRate          int64   `json:"base_rate" bson:"base_rate"`
	MinHours          float64 `json:"min_hours" bson:"min_hours"`
	ExtraPersonRate   int64   `json:"extra_person_rate" bson:"extra_person_rate"`
	CombinedThreshold int     `json:"combined_threshold" bson:"combined_threshold"`
	VATPercent        float64 `json:"vat_percent" bson:"vat_percent"`
}
