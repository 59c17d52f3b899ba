package models

import "gorm.io/datatypes"

const (
	ShopTypeBikeRepair      = "bike_repair"
	ShopTypeEcoStore        = "eco_store"
	ShopTypeRecyclingCenter = "recycling_center"
)

// Shop is read-only reference data served to the client.
type Shop struct {
	ID          string                      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string                      `gorm:"not null" json:"name"`
	Type        string                      `gorm:"type:varchar(32)" json:"type"`
	Position    Position                    `gorm:"embedded;embeddedPrefix:position_" json:"position"`
	Inventory   datatypes.JSON              `json:"inventory"` // item id -> {name, price, ...}
	NpcDialogue datatypes.JSONSlice[string] `json:"npc_dialogue"`
}
