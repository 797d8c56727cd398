package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"artwaves-catalog/models"

	_ "modernc.org/sqlite"
)

// SQLiteCatalog serves the catalog from a SQLite database.
type SQLiteCatalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteCatalog opens (or creates) the database at dbPath and applies the
// schema. Use ":memory:" in tests.
func NewSQLiteCatalog(ctx context.Context, dbPath string, logger *slog.Logger) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// An in-memory database lives in a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteCatalog{
		db:     db,
		logger: logger.With("component", "store", "backend", "sqlite"),
	}, nil
}

func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}

func (s *SQLiteCatalog) Products(ctx context.Context) ([]models.Product, error) {
	s.logger.Debug("sql", "op", "select", "table", "products")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, discount, final_price, category_id,
		        average_rating, review_count, stock, images, reviews
		 FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		var imagesJSON, reviewsJSON string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount, &p.FinalPrice,
			&p.CategoryID, &p.AverageRating, &p.ReviewCount, &p.Stock, &imagesJSON, &reviewsJSON); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images of product %d: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(reviewsJSON), &p.Reviews); err != nil {
			return nil, fmt.Errorf("unmarshal reviews of product %d: %w", p.ID, err)
		}
		p.Normalize()
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *SQLiteCatalog) Categories(ctx context.Context) ([]models.Category, error) {
	s.logger.Debug("sql", "op", "select", "table", "categories")

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SaveReview appends review to the stored review list and updates the
// rating summary.
func (s *SQLiteCatalog) SaveReview(ctx context.Context, productID int, review models.Review, avg float64, count int) error {
	s.logger.Debug("sql", "op", "update", "table", "products", "id", productID)

	var reviewsJSON string
	err := s.db.QueryRowContext(ctx, `SELECT reviews FROM products WHERE id = ?`, productID).Scan(&reviewsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("select reviews of product %d: %w", productID, err)
	}

	var reviews []models.Review
	if err := json.Unmarshal([]byte(reviewsJSON), &reviews); err != nil {
		return fmt.Errorf("unmarshal reviews of product %d: %w", productID, err)
	}
	updated, err := json.Marshal(append(reviews, review))
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE products SET reviews = ?, average_rating = ?, review_count = ? WHERE id = ?`,
		string(updated), avg, count, productID)
	return err
}

// ReplaceCatalog deletes all rows and inserts data.
func (s *SQLiteCatalog) ReplaceCatalog(ctx context.Context, data models.CatalogData) error {
	s.logger.Debug("sql", "op", "replace", "products", len(data.Products), "categories", len(data.Categories))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM products`, `DELETE FROM categories`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	for _, c := range data.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)`,
			c.ID, c.Name, c.Description); err != nil {
			return fmt.Errorf("insert category %d: %w", c.ID, err)
		}
	}
	for _, p := range data.Products {
		imagesJSON, err := marshalList(p.Images)
		if err != nil {
			return fmt.Errorf("marshal images: %w", err)
		}
		reviewsJSON, err := marshalList(p.Reviews)
		if err != nil {
			return fmt.Errorf("marshal reviews: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, description, price, discount, final_price, category_id,
			                       average_rating, review_count, stock, images, reviews)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.Price, p.Discount, p.FinalPrice, p.CategoryID,
			p.AverageRating, p.ReviewCount, p.Stock, imagesJSON, reviewsJSON); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// marshalList encodes a slice, writing nil as an empty array.
func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}
