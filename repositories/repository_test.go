package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"eco-cycle-game/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var errBroke = errors.New("insufficient funds")

func testCatalog() models.Catalog {
	return models.Catalog{
		Bicycles: []models.Bicycle{
			{ID: "electric_bike_basic", Name: "Eco Thunder", Type: models.BicycleTypeElectric, Speed: 35, Durability: 80, EcoEfficiency: 1, UpgradeLevel: 1, Price: 800},
			{ID: "city_bike_basic", Name: "City Cruiser", Type: models.BicycleTypeCity, Speed: 20, Durability: 100, EcoEfficiency: 0.8, UpgradeLevel: 1, Price: 200},
		},
		Shops: []models.Shop{
			{ID: "eco_store", Name: "Earth First Store", Type: models.ShopTypeEcoStore, Position: models.Position{X: 400, Y: 300}, Inventory: datatypes.JSON(`{}`), NpcDialogue: datatypes.JSONSlice[string]{"Hi"}},
		},
		Missions: []models.Mission{
			{ID: "cleanup_park", Name: "Clean the Park", Type: models.MissionTypePollutionCleanup, Objectives: datatypes.JSON(`{"trash_required":10}`), Rewards: models.MissionRewards{EcoPoints: 50, Money: 100}},
			{ID: "recycling_drive", Name: "Recycling Drive", Type: models.MissionTypeRecycling, Objectives: datatypes.JSON(`{"items_required":20}`), Rewards: models.MissionRewards{EcoPoints: 75, Money: 150}},
		},
	}
}

func newSQLiteRepository(t *testing.T) *GormRepository {
	t.Helper()
	repo, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// backends runs fn against every Repository implementation with a seeded catalog.
func backends(t *testing.T, fn func(t *testing.T, repo Repository)) {
	factories := map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewInMemoryRepository() },
		"sqlite": func(t *testing.T) Repository { return newSQLiteRepository(t) },
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			_, err := repo.SeedCatalog(context.Background(), testCatalog())
			require.NoError(t, err)
			fn(t, repo)
		})
	}
}

func createPlayer(t *testing.T, repo Repository) *models.Player {
	t.Helper()
	p := models.NewPlayer(uuid.NewString(), "Rider")
	require.NoError(t, repo.CreatePlayer(context.Background(), p))
	return p
}

func TestCreateAndGetPlayer(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := createPlayer(t, repo)

		got, err := repo.GetPlayer(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rider", got.Name)
		assert.Equal(t, int64(models.StartingMoney), got.Money)
		assert.Equal(t, models.StartingBicycleID, got.BicycleID)
		assert.Equal(t, models.StartingPosition, got.Position)
		assert.Empty(t, got.CompletedMissions)
		assert.Nil(t, got.CurrentMission)

		_, err = repo.GetPlayer(ctx, uuid.NewString())
		assert.True(t, IsNotFound(err))
	})
}

func TestUpdatePlayerPosition(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := createPlayer(t, repo)

		require.NoError(t, repo.UpdatePlayerPosition(ctx, p.ID, models.Position{X: 1.5, Y: -3}))
		got, err := repo.GetPlayer(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.Position{X: 1.5, Y: -3}, got.Position)
		assert.Equal(t, int64(models.StartingMoney), got.Money)

		err = repo.UpdatePlayerPosition(ctx, uuid.NewString(), models.Position{})
		assert.True(t, IsNotFound(err))
	})
}

func TestUpdatePlayerKeepsPositionAndInventory(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := models.NewPlayer(uuid.NewString(), "Collector")
		p.Inventory = datatypes.NewJSONType(map[string]int64{"plastic_bottle": 3})
		require.NoError(t, repo.CreatePlayer(ctx, p))
		require.NoError(t, repo.UpdatePlayerPosition(ctx, p.ID, models.Position{X: 9, Y: 9}))

		updated, err := repo.UpdatePlayer(ctx, p.ID, func(p *models.Player) error {
			p.Money -= 200
			p.Position = models.Position{X: -1, Y: -1}
			p.Inventory = datatypes.NewJSONType(map[string]int64{})
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(300), updated.Money)

		_, _, err = repo.CompleteMission(ctx, p.ID, "cleanup_park", func(p *models.Player, m *models.Mission) error {
			p.Money += m.Rewards.Money
			p.Inventory = datatypes.NewJSONType(map[string]int64{"paper_waste": 1})
			return nil
		})
		require.NoError(t, err)

		got, err := repo.GetPlayer(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(400), got.Money)
		assert.Equal(t, models.Position{X: 9, Y: 9}, got.Position)
		assert.Equal(t, map[string]int64{"plastic_bottle": 3}, got.Inventory.Data())
	})
}

func TestUpdatePlayerErrorLeavesRecordUntouched(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := createPlayer(t, repo)

		_, err := repo.UpdatePlayer(ctx, p.ID, func(p *models.Player) error {
			p.Money = 0
			p.BicycleID = "electric_bike_basic"
			return errBroke
		})
		require.ErrorIs(t, err, errBroke)

		got, err := repo.GetPlayer(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(models.StartingMoney), got.Money)
		assert.Equal(t, models.StartingBicycleID, got.BicycleID)

		_, err = repo.UpdatePlayer(ctx, uuid.NewString(), func(p *models.Player) error { return nil })
		assert.True(t, IsNotFound(err))
	})
}

func TestUpdatePlayerConcurrentSpendNeverOverdraws(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := createPlayer(t, repo)

		var wg sync.WaitGroup
		var successes atomic.Int64
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.UpdatePlayer(ctx, p.ID, func(p *models.Player) error {
					if p.Money < 200 {
						return errBroke
					}
					p.Money -= 200
					return nil
				})
				if err == nil {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()

		got, err := repo.GetPlayer(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(models.StartingMoney)-200*successes.Load(), got.Money)
		assert.GreaterOrEqual(t, got.Money, int64(0))
		assert.LessOrEqual(t, successes.Load(), int64(2))
	})
}

func TestCompleteMission(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := createPlayer(t, repo)

		player, mission, err := repo.CompleteMission(ctx, p.ID, "cleanup_park", func(p *models.Player, m *models.Mission) error {
			p.Money += m.Rewards.Money
			p.EcoPoints += m.Rewards.EcoPoints
			p.CompletedMissions = append(p.CompletedMissions, m.ID)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(600), player.Money)
		assert.Equal(t, int64(50), player.EcoPoints)
		assert.True(t, mission.Completed)
		require.NotNil(t, mission.CompletedBy)
		assert.Equal(t, p.ID, *mission.CompletedBy)

		stored, err := repo.GetMission(ctx, "cleanup_park")
		require.NoError(t, err)
		assert.True(t, stored.Completed)
		assert.NotNil(t, stored.CompletedAt)

		got, err := repo.GetPlayer(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"cleanup_park"}, []string(got.CompletedMissions))
	})
}

func TestCompleteMissionSecondClaimRejected(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		first := createPlayer(t, repo)
		second := createPlayer(t, repo)
		pay := func(p *models.Player, m *models.Mission) error {
			p.Money += m.Rewards.Money
			return nil
		}

		_, _, err := repo.CompleteMission(ctx, first.ID, "cleanup_park", pay)
		require.NoError(t, err)

		_, _, err = repo.CompleteMission(ctx, second.ID, "cleanup_park", pay)
		require.ErrorIs(t, err, ErrMissionClaimed)

		got, err := repo.GetPlayer(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(models.StartingMoney), got.Money)
	})
}

func TestCompleteMissionConcurrentSingleWinner(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		players := make([]*models.Player, 4)
		for i := range players {
			players[i] = createPlayer(t, repo)
		}

		var wg sync.WaitGroup
		var wins atomic.Int64
		for _, p := range players {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, _, err := repo.CompleteMission(ctx, id, "recycling_drive", func(p *models.Player, m *models.Mission) error {
					if m.Completed {
						return ErrMissionClaimed
					}
					p.Money += m.Rewards.Money
					return nil
				})
				if err == nil {
					wins.Add(1)
				} else {
					assert.ErrorIs(t, err, ErrMissionClaimed)
				}
			}(p.ID)
		}
		wg.Wait()
		assert.Equal(t, int64(1), wins.Load())

		var paid int
		for _, p := range players {
			got, err := repo.GetPlayer(ctx, p.ID)
			require.NoError(t, err)
			if got.Money == int64(models.StartingMoney)+150 {
				paid++
			}
		}
		assert.Equal(t, 1, paid)
	})
}

func TestCompleteMissionCallbackErrorRollsBack(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		p := createPlayer(t, repo)

		_, _, err := repo.CompleteMission(ctx, p.ID, "cleanup_park", func(p *models.Player, m *models.Mission) error {
			p.Money += 1000
			return errBroke
		})
		require.ErrorIs(t, err, errBroke)

		m, err := repo.GetMission(ctx, "cleanup_park")
		require.NoError(t, err)
		assert.False(t, m.Completed)

		_, _, err = repo.CompleteMission(ctx, p.ID, "nope", func(*models.Player, *models.Mission) error { return nil })
		assert.True(t, IsNotFound(err))
	})
}

func TestCatalogSeedAndList(t *testing.T) {
	backends(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		inserted, err := repo.SeedCatalog(ctx, testCatalog())
		require.NoError(t, err)
		assert.Zero(t, inserted, "reseeding must not duplicate rows")

		bicycles, err := repo.ListBicycles(ctx)
		require.NoError(t, err)
		require.Len(t, bicycles, 2)
		assert.Equal(t, "city_bike_basic", bicycles[0].ID)
		assert.Equal(t, "electric_bike_basic", bicycles[1].ID)

		b, err := repo.GetBicycle(ctx, "electric_bike_basic")
		require.NoError(t, err)
		assert.Equal(t, int64(800), b.Price)
		_, err = repo.GetBicycle(ctx, "unicycle")
		assert.True(t, IsNotFound(err))

		shops, err := repo.ListShops(ctx)
		require.NoError(t, err)
		require.Len(t, shops, 1)
		assert.Equal(t, []string{"Hi"}, []string(shops[0].NpcDialogue))

		missions, err := repo.ListMissions(ctx)
		require.NoError(t, err)
		require.Len(t, missions, 2)
		assert.Equal(t, "cleanup_park", missions[0].ID)
		assert.JSONEq(t, `{"trash_required":10}`, string(missions[0].Objectives))
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, "memory://")
	require.NoError(t, err)
	assert.IsType(t, &InMemoryRepository{}, repo)

	repo, err = Open(ctx, fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	assert.IsType(t, &GormRepository{}, repo)
	require.NoError(t, repo.Close())

	_, err = Open(ctx, "mongodb://localhost")
	assert.Error(t, err)
}

func TestUpdatePlayerRetriesAfterLosingVersionRace(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	p := createPlayer(t, repo)

	var calls int
	updated, err := repo.UpdatePlayer(ctx, p.ID, func(player *models.Player) error {
		calls++
		if calls == 1 {
			_, err := repo.UpdatePlayer(ctx, p.ID, func(rival *models.Player) error {
				rival.EcoPoints += 7
				return nil
			})
			require.NoError(t, err)
		}
		player.Money -= 100
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(400), updated.Money)
	assert.Equal(t, int64(7), updated.EcoPoints)

	got, err := repo.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), got.Money)
	assert.Equal(t, int64(7), got.EcoPoints)
	assert.Equal(t, int64(2), got.Version)
}

func TestUpdatePlayerGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	p := createPlayer(t, repo)

	var calls int
	_, err := repo.UpdatePlayer(ctx, p.ID, func(player *models.Player) error {
		calls++
		_, err := repo.UpdatePlayer(ctx, p.ID, func(rival *models.Player) error {
			rival.EcoPoints++
			return nil
		})
		require.NoError(t, err)
		player.Money = 0
		return nil
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, maxCASAttempts, calls)

	got, err := repo.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(models.StartingMoney), got.Money)
	assert.Equal(t, int64(maxCASAttempts), got.EcoPoints)
}

func TestRetryOnVersionConflict(t *testing.T) {
	var calls int
	err := retryOnVersionConflict(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errVersionConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryOnVersionConflict(context.Background(), func() error {
		calls++
		return errVersionConflict
	})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, maxCASAttempts, calls)

	calls = 0
	err = retryOnVersionConflict(context.Background(), func() error {
		calls++
		return errBroke
	})
	require.ErrorIs(t, err, errBroke)
	assert.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retryOnVersionConflict(ctx, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
