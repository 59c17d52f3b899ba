package models

// Catalog bundles the reference data seeded at startup.
type Catalog struct {
	Bicycles []Bicycle `json:"bicycles"`
	Shops    []Shop    `json:"shops"`
	Missions []Mission `json:"missions"`
}
