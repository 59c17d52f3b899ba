package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eco-cycle-game/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errVersionConflict signals a lost CAS round inside a transaction; it never escapes.
var errVersionConflict = errors.New("player version changed")

// GormRepository persists players and the catalog through GORM (Postgres or SQLite).
type GormRepository struct {
	DB *gorm.DB
}

// NewGormRepository migrates the schema and wraps db.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(
		&models.Player{},
		&models.Bicycle{},
		&models.Shop{},
		&models.Mission{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormRepository{DB: db}, nil
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepository) CreatePlayer(ctx context.Context, p *models.Player) error {
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *GormRepository) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	return r.loadPlayer(r.DB.WithContext(ctx), id)
}

func (r *GormRepository) loadPlayer(db *gorm.DB, id string) (*models.Player, error) {
	var p models.Player
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrNotFound{Entity: "player", ID: id}
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &p, nil
}

// UpdatePlayerPosition writes only the position columns, so it never races
// with progress mutations.
func (r *GormRepository) UpdatePlayerPosition(ctx context.Context, id string, pos models.Position) error {
	result := r.DB.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"position_x": pos.X,
			"position_y": pos.Y,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update position: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ErrNotFound{Entity: "player", ID: id}
	}
	return nil
}

func (r *GormRepository) UpdatePlayer(ctx context.Context, id string, mutate PlayerMutation) (*models.Player, error) {
	db := r.DB.WithContext(ctx)
	var updated *models.Player
	err := retryOnVersionConflict(ctx, func() error {
		p, err := r.loadPlayer(db, id)
		if err != nil {
			return err
		}
		if err := mutate(p); err != nil {
			return err
		}
		if err := casPlayer(db, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// retryOnVersionConflict re-runs attempt while it loses the version race, at
// most maxCASAttempts times.
func retryOnVersionConflict(ctx context.Context, attempt func() error) error {
	for i := 0; i < maxCASAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := attempt(); !errors.Is(err, errVersionConflict) {
			return err
		}
	}
	return ErrConflict
}

// casPlayer writes the progress columns of p iff the stored version still
// matches the one p was read at. p.Version is advanced on success.
func casPlayer(db *gorm.DB, p *models.Player) error {
	expected := p.Version
	p.Version = expected + 1
	result := db.Model(&models.Player{}).
		Where("id = ? AND version = ?", p.ID, expected).
		Updates(progressColumns(p))
	if result.Error != nil {
		p.Version = expected
		return fmt.Errorf("failed to update player: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		p.Version = expected
		return errVersionConflict
	}
	return nil
}

func (r *GormRepository) CompleteMission(ctx context.Context, playerID, missionID string, complete MissionCompletion) (*models.Player, *models.Mission, error) {
	var player *models.Player
	var mission *models.Mission
	err := retryOnVersionConflict(ctx, func() error {
		return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			p, err := r.loadPlayer(tx, playerID)
			if err != nil {
				return err
			}
			m, err := r.loadMission(tx, missionID)
			if err != nil {
				return err
			}
			if err := complete(p, m); err != nil {
				return err
			}

			// The guard makes the global flag single-winner across all players.
			now := time.Now().UTC()
			m.CompletedBy = &p.ID
			m.CompletedAt = &now
			result := tx.Model(&models.Mission{}).
				Where("id = ? AND completed = ?", m.ID, false).
				Updates(map[string]interface{}{
					"completed":    true,
					"completed_by": p.ID,
					"completed_at": now,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to mark mission completed: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrMissionClaimed
			}
			m.Completed = true

			if err := casPlayer(tx, p); err != nil {
				return err
			}
			player, mission = p, m
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return player, mission, nil
}

// SeedCatalog inserts catalog rows that are not present yet; existing rows win.
func (r *GormRepository) SeedCatalog(ctx context.Context, catalog models.Catalog) (int64, error) {
	var inserted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := func() *gorm.DB {
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			})
		}
		if len(catalog.Bicycles) > 0 {
			result := insert().Create(&catalog.Bicycles)
			if result.Error != nil {
				return fmt.Errorf("failed to seed bicycles: %w", result.Error)
			}
			inserted += result.RowsAffected
		}
		if len(catalog.Shops) > 0 {
			result := insert().Create(&catalog.Shops)
			if result.Error != nil {
				return fmt.Errorf("failed to seed shops: %w", result.Error)
			}
			inserted += result.RowsAffected
		}
		if len(catalog.Missions) > 0 {
			result := insert().Create(&catalog.Missions)
			if result.Error != nil {
				return fmt.Errorf("failed to seed missions: %w", result.Error)
			}
			inserted += result.RowsAffected
		}
		return nil
	})
	return inserted, err
}

func (r *GormRepository) ListBicycles(ctx context.Context) ([]models.Bicycle, error) {
	var bicycles []models.Bicycle
	if err := r.DB.WithContext(ctx).Order("price ASC, id ASC").Find(&bicycles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bicycles: %w", err)
	}
	return bicycles, nil
}

func (r *GormRepository) GetBicycle(ctx context.Context, id string) (*models.Bicycle, error) {
	var b models.Bicycle
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrNotFound{Entity: "bicycle", ID: id}
		}
		return nil, fmt.Errorf("failed to load bicycle: %w", err)
	}
	return &b, nil
}

func (r *GormRepository) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

func (r *GormRepository) ListMissions(ctx context.Context) ([]models.Mission, error) {
	var missions []models.Mission
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&missions).Error; err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return missions, nil
}

func (r *GormRepository) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	return r.loadMission(r.DB.WithContext(ctx), id)
}

func (r *GormRepository) loadMission(db *gorm.DB, id string) (*models.Mission, error) {
	var m models.Mission
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrNotFound{Entity: "mission", ID: id}
		}
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}
	return &m, nil
}
