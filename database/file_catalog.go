package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"artwaves-catalog/models"
)

// FileCatalog serves the catalog from a db.json snapshot. The file is read
// on every call so edits show up without a restart. Writes are not locked.
type FileCatalog struct {
	path   string
	logger *slog.Logger
}

func NewFileCatalog(path string, logger *slog.Logger) *FileCatalog {
	return &FileCatalog{
		path:   path,
		logger: logger.With("component", "store", "backend", "file"),
	}
}

// Load reads the whole snapshot.
func (f *FileCatalog) Load(ctx context.Context) (models.CatalogData, error) {
	f.logger.Debug("file", "op", "read", "path", f.path)
	if err := ctx.Err(); err != nil {
		return models.CatalogData{}, err
	}
	return ReadCatalogFile(f.path)
}

func (f *FileCatalog) Products(ctx context.Context) ([]models.Product, error) {
	data, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Products, nil
}

func (f *FileCatalog) Categories(ctx context.Context) ([]models.Category, error) {
	data, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Categories, nil
}

// SaveReview appends review to the product and rewrites the snapshot.
func (f *FileCatalog) SaveReview(ctx context.Context, productID int, review models.Review, avg float64, count int) error {
	data, err := f.Load(ctx)
	if err != nil {
		return err
	}
	i := indexOfProduct(data.Products, productID)
	if i < 0 {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	p := &data.Products[i]
	p.Reviews = append(p.Reviews, review)
	p.AverageRating = avg
	p.ReviewCount = count
	return f.ReplaceCatalog(ctx, data)
}

// ReplaceCatalog overwrites the snapshot with data.
func (f *FileCatalog) ReplaceCatalog(ctx context.Context, data models.CatalogData) error {
	f.logger.Debug("file", "op", "write", "path", f.path, "products", len(data.Products))
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteCatalogFile(f.path, data)
}

func (f *FileCatalog) Close() error { return nil }

// ReadCatalogFile decodes a db.json snapshot. Missing lists decode as empty,
// including the image and review lists of every product.
func ReadCatalogFile(path string) (models.CatalogData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.CatalogData{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var data models.CatalogData
	if err := json.Unmarshal(raw, &data); err != nil {
		return models.CatalogData{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if data.Products == nil {
		data.Products = []models.Product{}
	}
	if data.Categories == nil {
		data.Categories = []models.Category{}
	}
	for i := range data.Products {
		data.Products[i].Normalize()
	}
	return data, nil
}

// WriteCatalogFile writes data as 2-space indented JSON.
func WriteCatalogFile(path string, data models.CatalogData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}

func indexOfProduct(products []models.Product, id int) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
