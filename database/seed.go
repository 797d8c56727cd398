package database

import (
	"context"
	"fmt"

	"artwaves-catalog/models"
)

// Seeder is a catalog backend that can be loaded from a snapshot.
type Seeder interface {
	ReplaceCatalog(ctx context.Context, data models.CatalogData) error
}

// Seed replaces the contents of dst with data. Products must reference a
// known category and ids must be unique.
func Seed(ctx context.Context, dst Seeder, data models.CatalogData) error {
	if err := checkCatalog(data); err != nil {
		return err
	}
	if err := dst.ReplaceCatalog(ctx, data); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func checkCatalog(data models.CatalogData) error {
	categories := make(map[int]bool, len(data.Categories))
	for _, c := range data.Categories {
		if categories[c.ID] {
			return fmt.Errorf("duplicate category id %d", c.ID)
		}
		categories[c.ID] = true
	}
	seen := make(map[int]bool, len(data.Products))
	for _, p := range data.Products {
		if seen[p.ID] {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = true
		if !categories[p.CategoryID] {
			return fmt.Errorf("product %d: unknown category %d", p.ID, p.CategoryID)
		}
	}
	return nil
}
