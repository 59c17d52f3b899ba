// services/economy.go
package services

import (
	"context"

	"eco-cycle-game/logger"
	"eco-cycle-game/models"
	"eco-cycle-game/repositories"
)

// EconomyService owns every money movement caused by purchases.
type EconomyService struct {
	Repo    repositories.Repository
	Catalog *CatalogService
}

func NewEconomyService(repo repositories.Repository, catalog *CatalogService) *EconomyService {
	return &EconomyService{Repo: repo, Catalog: catalog}
}

// PurchaseBicycle equips bicycleID and debits its price in one conditional
// update. The balance check is re-run on every attempt.
func (s *EconomyService) PurchaseBicycle(ctx context.Context, playerID, bicycleID string) (*models.Player, error) {
	bicycle, err := s.Catalog.GetBicycle(ctx, bicycleID)
	if err != nil {
		return nil, err
	}

	player, err := s.Repo.UpdatePlayer(ctx, playerID, func(p *models.Player) error {
		if p.Money < bicycle.Price {
			return insufficientFunds()
		}
		p.Money -= bicycle.Price
		p.BicycleID = bicycle.ID
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	logger.Log.Infow("🚲 Bicycle purchased",
		"player_id", playerID,
		"bicycle_id", bicycle.ID,
		"price", bicycle.Price,
		"balance", player.Money,
	)
	return player, nil
}
