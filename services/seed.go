// services/seed.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"eco-cycle-game/logger"
	"eco-cycle-game/models"
	"eco-cycle-game/repositories"
	"eco-cycle-game/utils"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
)

// DefaultCatalog returns the built-in bicycles, shops and missions.
func DefaultCatalog() models.Catalog {
	return models.Catalog{
		Bicycles: []models.Bicycle{
			{ID: "city_bike_basic", Name: "City Cruiser", Type: models.BicycleTypeCity, Speed: 20.0, Durability: 100, EcoEfficiency: 0.8, UpgradeLevel: 1, Price: 200},
			{ID: "mountain_bike_basic", Name: "Trail Blazer", Type: models.BicycleTypeMountain, Speed: 18.0, Durability: 120, EcoEfficiency: 0.7, UpgradeLevel: 1, Price: 350},
			{ID: "electric_bike_basic", Name: "Eco Thunder", Type: models.BicycleTypeElectric, Speed: 35.0, Durability: 80, EcoEfficiency: 1.0, UpgradeLevel: 1, Price: 800},
			{ID: "cargo_bike_basic", Name: "Green Hauler", Type: models.BicycleTypeCargo, Speed: 15.0, Durability: 150, EcoEfficiency: 0.9, UpgradeLevel: 1, Price: 600},
		},
		Shops: []models.Shop{
			{
				ID:       "bike_repair_shop",
				Name:     "Green Wheels Repair",
				Type:     models.ShopTypeBikeRepair,
				Position: models.Position{X: 200, Y: 150},
				Inventory: datatypes.JSON(`{
					"eco_tire": {"name": "Eco-Friendly Tire", "price": 50, "eco_impact": 10},
					"bamboo_frame": {"name": "Bamboo Frame", "price": 200, "eco_impact": 50},
					"solar_light": {"name": "Solar Light", "price": 30, "eco_impact": 15}
				}`),
				NpcDialogue: datatypes.JSONSlice[string]{
					"Welcome to Green Wheels! We only use eco-friendly parts.",
					"Your bike needs some TLC? We've got sustainable solutions!",
					"Every repair here helps the environment!",
				},
			},
			{
				ID:       "eco_store",
				Name:     "Earth First Store",
				Type:     models.ShopTypeEcoStore,
				Position: models.Position{X: 400, Y: 300},
				Inventory: datatypes.JSON(`{
					"recycling_bag": {"name": "Recycling Bag", "price": 20, "capacity": 10},
					"solar_panel_kit": {"name": "Solar Panel Kit", "price": 500, "energy": 100},
					"compost_bin": {"name": "Compost Bin", "price": 80, "eco_impact": 25}
				}`),
				NpcDialogue: datatypes.JSONSlice[string]{
					"Everything here is 100% eco-friendly!",
					"Help save the planet, one purchase at a time!",
					"Our products are made from recycled materials!",
				},
			},
			{
				ID:       "recycling_center",
				Name:     "City Recycling Hub",
				Type:     models.ShopTypeRecyclingCenter,
				Position: models.Position{X: 600, Y: 100},
				Inventory: datatypes.JSON(`{
					"plastic_bottle": {"name": "Plastic Bottle", "buy_price": 2, "eco_impact": 5},
					"aluminum_can": {"name": "Aluminum Can", "buy_price": 3, "eco_impact": 8},
					"paper_waste": {"name": "Paper Waste", "buy_price": 1, "eco_impact": 3}
				}`),
				NpcDialogue: datatypes.JSONSlice[string]{
					"Bring me your recyclables and earn money!",
					"Every item recycled makes the city cleaner!",
					"We accept all kinds of recyclable materials!",
				},
			},
		},
		Missions: []models.Mission{
			{
				ID:          "cleanup_park",
				Name:        "Clean Up Central Park",
				Description: "The park is littered with trash. Help clean it up!",
				Type:        models.MissionTypePollutionCleanup,
				Objectives:  datatypes.JSON(`{"trash_collected": 0, "trash_required": 10, "location": {"x": 300, "y": 200}}`),
				Rewards:     models.MissionRewards{EcoPoints: 50, Money: 100},
			},
			{
				ID:          "install_solar_panels",
				Name:        "Solar Panel Installation",
				Description: "Install solar panels on rooftops to promote renewable energy.",
				Type:        models.MissionTypeRenewableEnergy,
				Objectives:  datatypes.JSON(`{"panels_installed": 0, "panels_required": 3, "locations": [{"x": 150, "y": 100}, {"x": 450, "y": 250}, {"x": 550, "y": 350}]}`),
				Rewards:     models.MissionRewards{EcoPoints: 100, Money: 200},
			},
			{
				ID:          "recycling_drive",
				Name:        "Community Recycling Drive",
				Description: "Collect recyclables from around the city and bring them to the recycling center.",
				Type:        models.MissionTypeRecycling,
				Objectives:  datatypes.JSON(`{"items_collected": 0, "items_required": 20, "types": ["plastic_bottle", "aluminum_can", "paper_waste"]}`),
				Rewards:     models.MissionRewards{EcoPoints: 75, Money: 150},
			},
		},
	}
}

// LoadCatalog decodes and validates a catalog document. Missions in the
// document always start open, whatever "completed" says.
func LoadCatalog(r io.Reader) (models.Catalog, error) {
	var catalog models.Catalog
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return models.Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := ValidateCatalog(catalog); err != nil {
		return models.Catalog{}, err
	}
	for i := range catalog.Missions {
		catalog.Missions[i].Completed = false
		catalog.Missions[i].CompletedBy = nil
		catalog.Missions[i].CompletedAt = nil
	}
	return catalog, nil
}

// LoadRemoteCatalog pulls a catalog document from object storage.
func LoadRemoteCatalog(ctx context.Context, client utils.ObjectGetter, bucket, key string) (models.Catalog, error) {
	data, err := utils.FetchObject(ctx, client, bucket, key)
	if err != nil {
		return models.Catalog{}, err
	}
	catalog, err := LoadCatalog(bytes.NewReader(data))
	if err != nil {
		return models.Catalog{}, err
	}
	logger.Log.Infow("📦 Remote catalog loaded",
		"bucket", bucket,
		"key", key,
		"bicycles", len(catalog.Bicycles),
		"shops", len(catalog.Shops),
		"missions", len(catalog.Missions),
	)
	return catalog, nil
}

// MaxCatalogAmount caps every price and reward a catalog document may carry.
const MaxCatalogAmount = 1_000_000_000

// ValidateCatalog checks ids, prices and rewards.
func ValidateCatalog(catalog models.Catalog) error {
	for _, b := range catalog.Bicycles {
		if !slug.IsSlug(b.ID) {
			return fmt.Errorf("invalid bicycle id %q", b.ID)
		}
		if b.Price < 0 {
			return fmt.Errorf("bicycle %q has negative price", b.ID)
		}
		if b.Price > MaxCatalogAmount {
			return fmt.Errorf("bicycle %q price exceeds %d", b.ID, MaxCatalogAmount)
		}
	}
	for _, s := range catalog.Shops {
		if !slug.IsSlug(s.ID) {
			return fmt.Errorf("invalid shop id %q", s.ID)
		}
	}
	for _, m := range catalog.Missions {
		if !slug.IsSlug(m.ID) {
			return fmt.Errorf("invalid mission id %q", m.ID)
		}
		if m.Rewards.EcoPoints < 0 || m.Rewards.Money < 0 {
			return fmt.Errorf("mission %q has negative rewards", m.ID)
		}
		if m.Rewards.EcoPoints > MaxCatalogAmount || m.Rewards.Money > MaxCatalogAmount {
			return fmt.Errorf("mission %q rewards exceed %d", m.ID, MaxCatalogAmount)
		}
	}
	return nil
}

// MergeCatalog returns base with every override entry added, or replacing the
// base entry with the same id. Base order is kept; new ids are appended.
func MergeCatalog(base, override models.Catalog) models.Catalog {
	return models.Catalog{
		Bicycles: mergeByID(base.Bicycles, override.Bicycles, func(b models.Bicycle) string { return b.ID }),
		Shops:    mergeByID(base.Shops, override.Shops, func(s models.Shop) string { return s.ID }),
		Missions: mergeByID(base.Missions, override.Missions, func(m models.Mission) string { return m.ID }),
	}
}

func mergeByID[T any](base, override []T, id func(T) string) []T {
	merged := make([]T, 0, len(base)+len(override))
	index := make(map[string]int, len(base)+len(override))
	for _, item := range base {
		index[id(item)] = len(merged)
		merged = append(merged, item)
	}
	for _, item := range override {
		if i, ok := index[id(item)]; ok {
			merged[i] = item
			continue
		}
		index[id(item)] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// SeedCatalog inserts the catalog idempotently; rows already stored are left alone.
func SeedCatalog(ctx context.Context, repo repositories.Repository, catalog models.Catalog) error {
	inserted, err := repo.SeedCatalog(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	logger.Log.Infow("🌱 Catalog seeded",
		"inserted", inserted,
		"bicycles", len(catalog.Bicycles),
		"shops", len(catalog.Shops),
		"missions", len(catalog.Missions),
	)
	return nil
}
