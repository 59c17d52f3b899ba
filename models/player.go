// models/player.go
package models

import (
	"slices"

	"gorm.io/datatypes"
)

// Starting values for a freshly created player.
const (
	StartingBicycleID = "city_bike_basic"
	StartingMoney     = 500
	StartingHealth    = 100
	StartingStamina   = 100
)

// StartingPosition sits on the first horizontal road (y=150) near the first vertical road (x=200).
var StartingPosition = Position{X: 220, Y: 170}

// Position is a 2D world coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Player is the persisted progress record for one participant.
type Player struct {
	ID       string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name     string   `gorm:"not null" json:"name"`
	Position Position `gorm:"embedded;embeddedPrefix:position_" json:"position"`
	Health   int      `gorm:"not null;default:100" json:"health"`
	Stamina  int      `gorm:"not null;default:100" json:"stamina"`

	// 💰 Economy: only the economy engine and mission controller write these
	EcoPoints int64  `gorm:"not null;default:0" json:"eco_points"`
	Money     int64  `gorm:"not null;default:0" json:"money"`
	BicycleID string `gorm:"not null" json:"bicycle_id"`

	Inventory datatypes.JSONType[map[string]int64] `json:"inventory"`

	// 🎯 Missions
	CompletedMissions datatypes.JSONSlice[string] `json:"completed_missions"`
	CurrentMission    *string                     `gorm:"index" json:"current_mission"`

	// Version is bumped by every progress mutation (compare-and-swap token).
	Version int64 `gorm:"not null;default:0" json:"-"`

	Timestamps
}

// NewPlayer builds a player with the fixed starting stats and vehicle.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:                id,
		Name:              name,
		Position:          StartingPosition,
		Health:            StartingHealth,
		Stamina:           StartingStamina,
		EcoPoints:         0,
		Money:             StartingMoney,
		BicycleID:         StartingBicycleID,
		Inventory:         datatypes.NewJSONType(map[string]int64{}),
		CompletedMissions: datatypes.JSONSlice[string]{},
	}
}

// HasCompleted reports whether missionID is already in the completion history.
func (p *Player) HasCompleted(missionID string) bool {
	return slices.Contains(p.CompletedMissions, missionID)
}

// ActiveMission returns the current mission id, or "" when idle.
func (p *Player) ActiveMission() string {
	if p.CurrentMission == nil {
		return ""
	}
	return *p.CurrentMission
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (p *Player) Clone() *Player {
	c := *p
	inv := make(map[string]int64, len(p.Inventory.Data()))
	for k, v := range p.Inventory.Data() {
		inv[k] = v
	}
	c.Inventory = datatypes.NewJSONType(inv)
	c.CompletedMissions = append(datatypes.JSONSlice[string]{}, p.CompletedMissions...)
	if p.CurrentMission != nil {
		m := *p.CurrentMission
		c.CurrentMission = &m
	}
	return &c
}
