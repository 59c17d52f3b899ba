// services/missions.go
package services

import (
	"context"
	"math"

	"eco-cycle-game/logger"
	"eco-cycle-game/models"
	"eco-cycle-game/repositories"
)

// MissionService drives the per-player mission state machine:
// Idle -> Active(mission) -> Idle, with completion also closing the mission
// for every player.
type MissionService struct {
	Repo    repositories.Repository
	Catalog *CatalogService
}

func NewMissionService(repo repositories.Repository, catalog *CatalogService) *MissionService {
	return &MissionService{Repo: repo, Catalog: catalog}
}

// StartMission makes missionID the player's active mission.
func (s *MissionService) StartMission(ctx context.Context, playerID, missionID string) (*models.Player, error) {
	if _, err := s.Catalog.GetMission(ctx, missionID); err != nil {
		return nil, err
	}

	player, err := s.Repo.UpdatePlayer(ctx, playerID, func(p *models.Player) error {
		// Re-read each attempt: the flag may flip while we retry.
		mission, err := s.Repo.GetMission(ctx, missionID)
		if err != nil {
			return err
		}
		if mission.Completed || p.HasCompleted(missionID) {
			return missionAlreadyCompleted()
		}
		if p.CurrentMission != nil {
			return missionAlreadyActive()
		}
		id := missionID
		p.CurrentMission = &id
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	logger.Log.Infow("🎯 Mission started", "player_id", playerID, "mission_id", missionID)
	return player, nil
}

// CompleteMission pays out the mission rewards, records the completion and
// closes the mission globally, all in one atomic step. Objective progress is
// reported by the client and not checked here.
func (s *MissionService) CompleteMission(ctx context.Context, playerID, missionID string) (models.MissionRewards, error) {
	var rewards models.MissionRewards
	player, _, err := s.Repo.CompleteMission(ctx, playerID, missionID, func(p *models.Player, m *models.Mission) error {
		if p.ActiveMission() != m.ID {
			return missionNotActive()
		}
		if m.Completed || p.HasCompleted(m.ID) {
			return missionAlreadyCompleted()
		}
		if p.Money > math.MaxInt64-m.Rewards.Money || p.EcoPoints > math.MaxInt64-m.Rewards.EcoPoints {
			return balanceOverflow()
		}
		p.EcoPoints += m.Rewards.EcoPoints
		p.Money += m.Rewards.Money
		p.CompletedMissions = append(p.CompletedMissions, m.ID)
		p.CurrentMission = nil
		rewards = m.Rewards
		return nil
	})
	if err != nil {
		return models.MissionRewards{}, storageError(err)
	}

	logger.Log.Infow("🏆 Mission completed",
		"player_id", playerID,
		"mission_id", missionID,
		"eco_points", rewards.EcoPoints,
		"money", rewards.Money,
		"balance", player.Money,
	)
	return rewards, nil
}

// AbandonMission returns the player to Idle without any reward. It is the
// way out when someone else completed the player's active mission first.
func (s *MissionService) AbandonMission(ctx context.Context, playerID, missionID string) (*models.Player, error) {
	if _, err := s.Catalog.GetMission(ctx, missionID); err != nil {
		return nil, err
	}

	player, err := s.Repo.UpdatePlayer(ctx, playerID, func(p *models.Player) error {
		if p.ActiveMission() != missionID {
			return missionNotActive()
		}
		p.CurrentMission = nil
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	logger.Log.Infow("↩️ Mission abandoned", "player_id", playerID, "mission_id", missionID)
	return player, nil
}
