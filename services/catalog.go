// services/catalog.go
package services

import (
	"context"
	"sync"
	"time"

	"eco-cycle-game/logger"
	"eco-cycle-game/models"
	"eco-cycle-game/repositories"
)

// CatalogService serves reference data. Bicycles and shops are cached since
// they never change after seeding; missions carry a live completion flag and
// are always read from the store.
type CatalogService struct {
	Repo repositories.Repository

	mu       sync.RWMutex
	bicycles []models.Bicycle
	byID     map[string]models.Bicycle
	shops    []models.Shop
	loadedAt time.Time
}

func NewCatalogService(repo repositories.Repository) *CatalogService {
	return &CatalogService{Repo: repo}
}

// Refresh reloads the cached bicycles and shops from the store.
func (s *CatalogService) Refresh(ctx context.Context) error {
	bicycles, err := s.Repo.ListBicycles(ctx)
	if err != nil {
		return err
	}
	shops, err := s.Repo.ListShops(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]models.Bicycle, len(bicycles))
	for _, b := range bicycles {
		byID[b.ID] = b
	}

	s.mu.Lock()
	s.bicycles = bicycles
	s.byID = byID
	s.shops = shops
	s.loadedAt = time.Now()
	s.mu.Unlock()

	logger.Log.Debugw("🔄 Catalog cache refreshed", "bicycles", len(bicycles), "shops", len(shops))
	return nil
}

func (s *CatalogService) loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loadedAt.IsZero()
}

func (s *CatalogService) ensureLoaded(ctx context.Context) error {
	if s.loaded() {
		return nil
	}
	return s.Refresh(ctx)
}

// LoadedAt is the time of the last successful refresh, zero if none.
func (s *CatalogService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *CatalogService) ListBicycles(ctx context.Context) ([]models.Bicycle, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Bicycle(nil), s.bicycles...), nil
}

// GetBicycle looks in the cache first and falls back to the store, so
// bicycles added after the last refresh are still found.
func (s *CatalogService) GetBicycle(ctx context.Context, id string) (*models.Bicycle, error) {
	s.mu.RLock()
	b, ok := s.byID[id]
	s.mu.RUnlock()
	if ok {
		return &b, nil
	}
	found, err := s.Repo.GetBicycle(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return found, nil
}

func (s *CatalogService) ListShops(ctx context.Context) ([]models.Shop, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Shop(nil), s.shops...), nil
}

func (s *CatalogService) ListMissions(ctx context.Context) ([]models.Mission, error) {
	return s.Repo.ListMissions(ctx)
}

func (s *CatalogService) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	m, err := s.Repo.GetMission(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return m, nil
}
