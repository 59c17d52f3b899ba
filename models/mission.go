// models/mission.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MissionTypePollutionCleanup = "pollution_cleanup"
	MissionTypeRecycling        = "recycling"
	MissionTypeRenewableEnergy  = "renewable_energy"
)

// MissionRewards is paid out once, on completion.
type MissionRewards struct {
	EcoPoints int64 `gorm:"not null;default:0" json:"eco_points"`
	Money     int64 `gorm:"not null;default:0" json:"money"`
}

// Mission is a catalog mission plus its global completion status.
// Objectives are opaque to the server; only Rewards and Completed are interpreted.
type Mission struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Type        string         `gorm:"type:varchar(32)" json:"type"`
	Objectives  datatypes.JSON `json:"objectives"`
	Rewards     MissionRewards `gorm:"embedded;embeddedPrefix:reward_" json:"rewards"`

	// Completed flips to true exactly once, together with CompletedBy/CompletedAt.
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedBy *string    `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy.
func (m *Mission) Clone() *Mission {
	c := *m
	c.Objectives = append(datatypes.JSON(nil), m.Objectives...)
	if m.CompletedBy != nil {
		by := *m.CompletedBy
		c.CompletedBy = &by
	}
	if m.CompletedAt != nil {
		at := *m.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
