package models

const (
	BicycleTypeCity     = "city"
	BicycleTypeMountain = "mountain"
	BicycleTypeElectric = "electric"
	BicycleTypeCargo    = "cargo"
)

// Bicycle is a purchasable vehicle from the catalog. Immutable once seeded.
type Bicycle struct {
	ID            string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name          string  `gorm:"not null" json:"name"`
	Type          string  `gorm:"type:varchar(16);not null" json:"type"`
	Speed         float64 `json:"speed"`
	Durability    int     `json:"durability"`
	EcoEfficiency float64 `json:"eco_efficiency"`
	UpgradeLevel  int     `gorm:"default:1" json:"upgrade_level"`
	Price         int64   `gorm:"not null;check:price >= 0" json:"price"`
}
