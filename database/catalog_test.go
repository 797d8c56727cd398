package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"artwaves-catalog/config"
	"artwaves-catalog/logging"
	"artwaves-catalog/models"
)

func sampleCatalog() models.CatalogData {
	return models.CatalogData{
		Categories: []models.Category{
			{ID: 1, Name: "Paintings", Description: "Original paintings"},
			{ID: 2, Name: "Digital Art", Description: "Digital artwork"},
		},
		Products: []models.Product{
			{
				ID: 2, Name: "Gothic Garden", Description: "Pencil artwork", Price: 150, FinalPrice: 150,
				CategoryID: 1, Stock: 3,
				Images: []models.Image{{URL: "https://example.com/2.jpg", IsPrimary: true}},
			},
			{
				ID: 1, Name: "Abstract Landscape", Description: "Oil artwork", Price: 200, Discount: 10, FinalPrice: 180,
				CategoryID: 2, AverageRating: 4, ReviewCount: 1, Stock: 1,
				Reviews: []models.Review{{ID: 1, Rating: 4, Comment: "Nice", ReviewerName: "Anna S.", Date: "2024-01-02T03:04:05.000Z"}},
			},
		},
	}
}

// backends returns a fresh, seeded instance of every local backend.
func backends(t *testing.T) map[string]Catalog {
	t.Helper()
	ctx := context.Background()
	logger := logging.Discard()

	path := filepath.Join(t.TempDir(), "db.json")
	if err := WriteCatalogFile(path, sampleCatalog()); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	sqlite, err := NewSQLiteCatalog(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	if err := Seed(ctx, sqlite, sampleCatalog()); err != nil {
		t.Fatalf("seed sqlite: %v", err)
	}

	return map[string]Catalog{
		"file":   NewFileCatalog(path, logger),
		"sqlite": sqlite,
	}
}

func TestCatalog_Reads(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			categories, err := store.Categories(ctx)
			if err != nil {
				t.Fatalf("categories: %v", err)
			}
			if len(categories) != 2 || categories[1].Name != "Digital Art" {
				t.Errorf("categories = %+v", categories)
			}

			products, err := store.Products(ctx)
			if err != nil {
				t.Fatalf("products: %v", err)
			}
			if len(products) != 2 {
				t.Fatalf("got %d products", len(products))
			}
			var abstract models.Product
			for _, p := range products {
				if p.ID == 1 {
					abstract = p
				}
			}
			if abstract.FinalPrice != 180 || abstract.Discount != 10 || abstract.CategoryID != 2 {
				t.Errorf("product 1 = %+v", abstract)
			}
			if len(abstract.Reviews) != 1 || abstract.Reviews[0].ReviewerName != "Anna S." {
				t.Errorf("reviews = %+v", abstract.Reviews)
			}
		})
	}
}

func TestCatalog_SaveReview(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			review := models.Review{ID: 2, Rating: 5, Comment: "Great", ReviewerName: "Maria C.", Date: "2024-06-01T00:00:00.000Z"}

			if err := store.SaveReview(ctx, 1, review, 4.5, 2); err != nil {
				t.Fatalf("save review: %v", err)
			}

			products, err := store.Products(ctx)
			if err != nil {
				t.Fatalf("products: %v", err)
			}
			for _, p := range products {
				if p.ID != 1 {
					continue
				}
				if p.AverageRating != 4.5 || p.ReviewCount != 2 {
					t.Errorf("summary = %v/%d", p.AverageRating, p.ReviewCount)
				}
				if len(p.Reviews) != 2 || p.Reviews[1] != review {
					t.Errorf("reviews = %+v", p.Reviews)
				}
			}

			err = store.SaveReview(ctx, 99, review, 5, 1)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("unknown product: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestCatalog_ProductsCarryEmptyLists(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			products, err := store.Products(context.Background())
			if err != nil {
				t.Fatalf("Products: %v", err)
			}
			for _, p := range products {
				raw, err := json.Marshal(p)
				if err != nil {
					t.Fatalf("marshal: %v", err)
				}
				var doc map[string]json.RawMessage
				if err := json.Unmarshal(raw, &doc); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				for _, key := range []string{"images", "reviews"} {
					if v, ok := doc[key]; !ok || string(v) == "null" {
						t.Errorf("product %d: %s = %s, want an array", p.ID, key, v)
					}
				}
			}
		})
	}
}

func TestFileCatalog_RewriteKeepsEmptyLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	snapshot := `{"categories":[{"id":1,"name":"Paintings","description":""}],"products":[
		{"id":1,"name":"A","category_id":1,"images":[],"reviews":[]},
		{"id":2,"name":"B","category_id":1,"images":[],"reviews":[]},
		{"id":3,"name":"C","category_id":1}
	]}`
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileCatalog(path, logging.Discard())
	review := models.Review{ID: 1, Rating: 5, Comment: "Great", ReviewerName: "Maria C."}
	if err := store.SaveReview(context.Background(), 1, review, 5, 1); err != nil {
		t.Fatalf("SaveReview: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Products []map[string]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, p := range doc.Products[1:] {
		if string(p["reviews"]) != "[]" || string(p["images"]) != "[]" {
			t.Errorf("product %s: reviews=%s images=%s, want []", p["id"], p["reviews"], p["images"])
		}
	}
}

func TestFileCatalog_RereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := WriteCatalogFile(path, sampleCatalog()); err != nil {
		t.Fatal(err)
	}
	store := NewFileCatalog(path, logging.Discard())

	data := sampleCatalog()
	data.Products = data.Products[:1]
	if err := WriteCatalogFile(path, data); err != nil {
		t.Fatal(err)
	}

	products, err := store.Products(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 {
		t.Errorf("got %d products after rewrite, want 1", len(products))
	}
}

func TestFileCatalog_WritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := WriteCatalogFile(path, sampleCatalog()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "{\n  \"categories\": [\n    {") {
		t.Errorf("unexpected layout:\n%s", raw[:40])
	}
}

func TestFileCatalog_Errors(t *testing.T) {
	dir := t.TempDir()
	missing := NewFileCatalog(filepath.Join(dir, "missing.json"), logging.Discard())
	if _, err := missing.Products(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileCatalog(broken, logging.Discard()).Categories(context.Background()); err == nil {
		t.Error("expected error for malformed file")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	products, err := NewFileCatalog(empty, logging.Discard()).Products(context.Background())
	if err != nil || products == nil || len(products) != 0 {
		t.Errorf("empty snapshot: products = %v, err = %v", products, err)
	}
}

func TestSQLiteCatalog_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteCatalog(ctx, ":memory:", logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := migrate(ctx, store.db); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}

func TestSeed_RejectsInconsistentCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.CatalogData)
		wantErr string
	}{
		{"duplicate product", func(d *models.CatalogData) { d.Products[1].ID = 2 }, "duplicate product id 2"},
		{"duplicate category", func(d *models.CatalogData) { d.Categories[1].ID = 1 }, "duplicate category id 1"},
		{"unknown category", func(d *models.CatalogData) { d.Products[0].CategoryID = 9 }, "unknown category 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := sampleCatalog()
			tt.mutate(&data)
			dst := &recordingSeeder{}
			err := Seed(context.Background(), dst, data)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
			if dst.calls != 0 {
				t.Error("destination written despite invalid catalog")
			}
		})
	}
}

type recordingSeeder struct{ calls int }

func (r *recordingSeeder) ReplaceCatalog(context.Context, models.CatalogData) error {
	r.calls++
	return nil
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, &config.Config{Backend: config.BackendFile, CatalogFile: "db.json"}, logging.Discard())
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, ok := store.(*FileCatalog); !ok {
		t.Errorf("file backend = %T", store)
	}

	store, err = Open(ctx, &config.Config{Backend: config.BackendSQLite, SQLitePath: ":memory:"}, logging.Discard())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteCatalog); !ok {
		t.Errorf("sqlite backend = %T", store)
	}

	if _, err := Open(ctx, &config.Config{Backend: "postgres"}, logging.Discard()); err == nil {
		t.Error("expected error for unknown backend")
	}
}
