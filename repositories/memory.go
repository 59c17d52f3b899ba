package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"eco-cycle-game/models"
)

type playerEntry struct {
	mu     sync.Mutex
	player *models.Player
}

// InMemoryRepository keeps everything in process memory. Each player has its
// own lock; mission completion takes the player lock first, then missionsLock.
type InMemoryRepository struct {
	lock    sync.RWMutex
	players map[string]*playerEntry

	catalogLock sync.RWMutex
	bicycles    map[string]models.Bicycle
	shops       map[string]models.Shop

	missionsLock sync.Mutex
	missions     map[string]*models.Mission
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		players:  make(map[string]*playerEntry),
		bicycles: make(map[string]models.Bicycle),
		shops:    make(map[string]models.Shop),
		missions: make(map[string]*models.Mission),
	}
}

func (r *InMemoryRepository) Close() error {
	return nil
}

func (r *InMemoryRepository) entry(id string) (*playerEntry, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	e, ok := r.players[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "player", ID: id}
	}
	return e, nil
}

func (r *InMemoryRepository) CreatePlayer(ctx context.Context, p *models.Player) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, exists := r.players[p.ID]; exists {
		return fmt.Errorf("failed to create player: id %q already exists", p.ID)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.players[p.ID] = &playerEntry{player: p.Clone()}
	return nil
}

func (r *InMemoryRepository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.Clone(), nil
}

func (r *InMemoryRepository) UpdatePlayerPosition(ctx context.Context, id string, pos models.Position) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.player.Position = pos
	e.player.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) UpdatePlayer(ctx context.Context, id string, mutate PlayerMutation) (*models.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.player.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version = e.player.Version + 1
	next.UpdatedAt = time.Now().UTC()
	copyProgress(e.player, next)
	return e.player.Clone(), nil
}

func (r *InMemoryRepository) CompleteMission(ctx context.Context, playerID, missionID string, complete MissionCompletion) (*models.Player, *models.Mission, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	e, err := r.entry(playerID)
	if err != nil {
		return nil, nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	r.missionsLock.Lock()
	defer r.missionsLock.Unlock()
	stored, ok := r.missions[missionID]
	if !ok {
		return nil, nil, &ErrNotFound{Entity: "mission", ID: missionID}
	}

	p := e.player.Clone()
	m := stored.Clone()
	if err := complete(p, m); err != nil {
		return nil, nil, err
	}
	if stored.Completed {
		return nil, nil, ErrMissionClaimed
	}

	now := time.Now().UTC()
	m.Completed = true
	m.CompletedBy = &p.ID
	m.CompletedAt = &now
	r.missions[missionID] = m.Clone()

	p.Version = e.player.Version + 1
	p.UpdatedAt = now
	copyProgress(e.player, p)
	return e.player.Clone(), m, nil
}

func (r *InMemoryRepository) SeedCatalog(ctx context.Context, catalog models.Catalog) (int64, error) {
	var inserted int64

	r.catalogLock.Lock()
	for _, b := range catalog.Bicycles {
		if _, exists := r.bicycles[b.ID]; !exists {
			r.bicycles[b.ID] = b
			inserted++
		}
	}
	for _, s := range catalog.Shops {
		if _, exists := r.shops[s.ID]; !exists {
			r.shops[s.ID] = s
			inserted++
		}
	}
	r.catalogLock.Unlock()

	r.missionsLock.Lock()
	for i := range catalog.Missions {
		m := catalog.Missions[i]
		if _, exists := r.missions[m.ID]; !exists {
			r.missions[m.ID] = m.Clone()
			inserted++
		}
	}
	r.missionsLock.Unlock()

	return inserted, nil
}

func (r *InMemoryRepository) ListBicycles(ctx context.Context) ([]models.Bicycle, error) {
	r.catalogLock.RLock()
	defer r.catalogLock.RUnlock()
	bicycles := make([]models.Bicycle, 0, len(r.bicycles))
	for _, b := range r.bicycles {
		bicycles = append(bicycles, b)
	}
	slices.SortFunc(bicycles, func(a, b models.Bicycle) int {
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return bicycles, nil
}

func (r *InMemoryRepository) GetBicycle(ctx context.Context, id string) (*models.Bicycle, error) {
	r.catalogLock.RLock()
	defer r.catalogLock.RUnlock()
	b, ok := r.bicycles[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "bicycle", ID: id}
	}
	return &b, nil
}

func (r *InMemoryRepository) ListShops(ctx context.Context) ([]models.Shop, error) {
	r.catalogLock.RLock()
	defer r.catalogLock.RUnlock()
	shops := make([]models.Shop, 0, len(r.shops))
	for _, s := range r.shops {
		shops = append(shops, s)
	}
	slices.SortFunc(shops, func(a, b models.Shop) int { return cmp.Compare(a.ID, b.ID) })
	return shops, nil
}

func (r *InMemoryRepository) ListMissions(ctx context.Context) ([]models.Mission, error) {
	r.missionsLock.Lock()
	defer r.missionsLock.Unlock()
	missions := make([]models.Mission, 0, len(r.missions))
	for _, m := range r.missions {
		missions = append(missions, *m.Clone())
	}
	slices.SortFunc(missions, func(a, b models.Mission) int { return cmp.Compare(a.ID, b.ID) })
	return missions, nil
}

func (r *InMemoryRepository) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	r.missionsLock.Lock()
	defer r.missionsLock.Unlock()
	m, ok := r.missions[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "mission", ID: id}
	}
	return m.Clone(), nil
}
