package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"artwaves-catalog/models"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
)

// MongoCatalog serves the catalog from the products and categories
// collections. Documents use the integer catalog id as _id.
type MongoCatalog struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

func NewMongoCatalog(client *mongo.Client, database string, logger *slog.Logger) *MongoCatalog {
	return &MongoCatalog{
		client: client,
		db:     client.Database(database),
		logger: logger.With("component", "store", "backend", "mongo"),
	}
}

// Products returns every product ordered by id.
func (m *MongoCatalog) Products(ctx context.Context) ([]models.Product, error) {
	m.logger.Debug("mongo", "op", "find", "collection", productsCollection)

	cursor, err := m.db.Collection(productsCollection).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, nil
}

// Categories returns every category ordered by id.
func (m *MongoCatalog) Categories(ctx context.Context) ([]models.Category, error) {
	m.logger.Debug("mongo", "op", "find", "collection", categoriesCollection)

	cursor, err := m.db.Collection(categoriesCollection).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// SaveReview appends review to the product and stores its new rating summary.
func (m *MongoCatalog) SaveReview(ctx context.Context, productID int, review models.Review, avg float64, count int) error {
	m.logger.Debug("mongo", "op", "update", "collection", productsCollection, "id", productID)

	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$set":  bson.M{"average_rating": avg, "review_count": count},
	}
	result, err := m.db.Collection(productsCollection).UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("save review for product %d: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return nil
}

// ReplaceCatalog drops both collections and inserts data.
func (m *MongoCatalog) ReplaceCatalog(ctx context.Context, data models.CatalogData) error {
	m.logger.Debug("mongo", "op", "replace", "products", len(data.Products), "categories", len(data.Categories))

	for _, name := range []string{categoriesCollection, productsCollection} {
		if err := m.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	if len(data.Categories) > 0 {
		docs := make([]any, len(data.Categories))
		for i, c := range data.Categories {
			docs[i] = c
		}
		if _, err := m.db.Collection(categoriesCollection).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert categories: %w", err)
		}
	}
	if len(data.Products) > 0 {
		docs := make([]any, len(data.Products))
		for i, p := range data.Products {
			p.Normalize()
			docs[i] = p
		}
		if _, err := m.db.Collection(productsCollection).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
	}
	return nil
}

// Close disconnects the client.
func (m *MongoCatalog) Close() error {
	return m.client.Disconnect(context.Background())
}
