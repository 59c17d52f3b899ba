// Package repositories holds the player record store and catalog store.
// Every player mutation goes through a compare-and-swap on Player.Version.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"eco-cycle-game/models"
)

// maxCASAttempts bounds how often a mutation is re-run after losing a version race.
const maxCASAttempts = 8

var (
	// ErrMissionClaimed means the guarded "completed = false" update matched nothing.
	ErrMissionClaimed = errors.New("mission already claimed")
	// ErrConflict means the player kept changing underneath us for maxCASAttempts rounds.
	ErrConflict = errors.New("concurrent update conflict")
)

// ErrNotFound reports a missing player, bicycle, shop or mission.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// PlayerMutation edits a private copy of the player. Returning an error aborts
// the update and leaves the stored record untouched.
type PlayerMutation func(p *models.Player) error

// MissionCompletion edits private copies of the player and the mission. The
// repository then writes both in one atomic step.
type MissionCompletion func(p *models.Player, m *models.Mission) error

// Repository is the storage boundary injected into the services.
// Implementations must be safe for concurrent use.
type Repository interface {
	Close() error

	// Players
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	UpdatePlayerPosition(ctx context.Context, id string, pos models.Position) error
	// UpdatePlayer applies mutate as an atomic conditional update. mutate may be
	// called more than once and must only depend on the player it receives.
	UpdatePlayer(ctx context.Context, id string, mutate PlayerMutation) (*models.Player, error)
	// CompleteMission applies complete to the player and mission together. It
	// fails with ErrMissionClaimed when the mission was already marked completed.
	CompleteMission(ctx context.Context, playerID, missionID string, complete MissionCompletion) (*models.Player, *models.Mission, error)

	// Catalog
	SeedCatalog(ctx context.Context, catalog models.Catalog) (int64, error)
	ListBicycles(ctx context.Context) ([]models.Bicycle, error)
	GetBicycle(ctx context.Context, id string) (*models.Bicycle, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
	ListMissions(ctx context.Context) ([]models.Mission, error)
	GetMission(ctx context.Context, id string) (*models.Mission, error)
}

// progressColumns are the only player columns a mutation may write. Position
// and inventory are owned by other flows and must survive untouched.
func progressColumns(p *models.Player) map[string]interface{} {
	return map[string]interface{}{
		"money":              p.Money,
		"eco_points":         p.EcoPoints,
		"bicycle_id":         p.BicycleID,
		"current_mission":    p.CurrentMission,
		"completed_missions": p.CompletedMissions,
		"version":            p.Version,
	}
}

// copyProgress is the in-memory counterpart of progressColumns.
func copyProgress(dst, src *models.Player) {
	dst.Money = src.Money
	dst.EcoPoints = src.EcoPoints
	dst.BicycleID = src.BicycleID
	dst.CurrentMission = src.CurrentMission
	dst.CompletedMissions = src.CompletedMissions
	dst.Version = src.Version
	dst.UpdatedAt = src.UpdatedAt
}
