// services/session.go
package services

import (
	"context"

	"eco-cycle-game/logger"
	"eco-cycle-game/models"
	"eco-cycle-game/repositories"

	"github.com/google/uuid"
)

// SessionService is the only entry point the transport layer calls. It checks
// request shape, then hands off to the economy and mission services.
type SessionService struct {
	Repo     repositories.Repository
	Catalog  *CatalogService
	Economy  *EconomyService
	Missions *MissionService
}

func NewSessionService(repo repositories.Repository, catalog *CatalogService) *SessionService {
	return &SessionService{
		Repo:     repo,
		Catalog:  catalog,
		Economy:  NewEconomyService(repo, catalog),
		Missions: NewMissionService(repo, catalog),
	}
}

func (s *SessionService) CreatePlayer(ctx context.Context, name string) (*models.Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	player := models.NewPlayer(uuid.NewString(), name)
	if err := s.Repo.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	logger.Log.Infow("🆕 Player created", "player_id", player.ID, "name", player.Name)
	return player, nil
}

func (s *SessionService) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	id, err := normalizePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	player, err := s.Repo.GetPlayer(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return player, nil
}

// UpdatePosition stores the client-reported position. Movement is not
// simulated server-side; only finiteness is checked.
func (s *SessionService) UpdatePosition(ctx context.Context, playerID string, x, y float64) error {
	id, err := normalizePlayerID(playerID)
	if err != nil {
		return err
	}
	if err := validateCoordinate("x", x); err != nil {
		return err
	}
	if err := validateCoordinate("y", y); err != nil {
		return err
	}
	return storageError(s.Repo.UpdatePlayerPosition(ctx, id, models.Position{X: x, Y: y}))
}

func (s *SessionService) PurchaseBicycle(ctx context.Context, playerID, bicycleID string) (*models.Player, error) {
	id, err := normalizePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	if err := validateCatalogID("bicycle_id", bicycleID); err != nil {
		return nil, err
	}
	return s.Economy.PurchaseBicycle(ctx, id, bicycleID)
}

func (s *SessionService) StartMission(ctx context.Context, playerID, missionID string) (*models.Player, error) {
	id, err := normalizePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	if err := validateCatalogID("mission_id", missionID); err != nil {
		return nil, err
	}
	return s.Missions.StartMission(ctx, id, missionID)
}

func (s *SessionService) CompleteMission(ctx context.Context, playerID, missionID string) (models.MissionRewards, error) {
	id, err := normalizePlayerID(playerID)
	if err != nil {
		return models.MissionRewards{}, err
	}
	if err := validateCatalogID("mission_id", missionID); err != nil {
		return models.MissionRewards{}, err
	}
	return s.Missions.CompleteMission(ctx, id, missionID)
}

func (s *SessionService) AbandonMission(ctx context.Context, playerID, missionID string) (*models.Player, error) {
	id, err := normalizePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	if err := validateCatalogID("mission_id", missionID); err != nil {
		return nil, err
	}
	return s.Missions.AbandonMission(ctx, id, missionID)
}

func (s *SessionService) ListBicycles(ctx context.Context) ([]models.Bicycle, error) {
	return s.Catalog.ListBicycles(ctx)
}

func (s *SessionService) ListShops(ctx context.Context) ([]models.Shop, error) {
	return s.Catalog.ListShops(ctx)
}

func (s *SessionService) ListMissions(ctx context.Context) ([]models.Mission, error) {
	return s.Catalog.ListMissions(ctx)
}
