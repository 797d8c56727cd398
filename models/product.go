package models

// Image is one picture of a product.
type Image struct {
	URL       string `json:"url" bson:"url" yaml:"url"`
	IsPrimary bool   `json:"is_primary" bson:"is_primary" yaml:"is_primary"`
}

// Review is a customer review attached to a product
type Review struct {
	ID           int     `json:"id" bson:"id" yaml:"id"`
	Rating       float64 `json:"rating" bson:"rating" yaml:"rating"`
	Comment      string  `json:"comment" bson:"comment" yaml:"comment"`
	ReviewerName string  `json:"reviewer_name" bson:"reviewer_name" yaml:"reviewer_name"`
	Date         string  `json:"date" bson:"date" yaml:"date"`
}

// Product represents a catalog entry.
// FinalPrice is stored as given and is expected to equal Price*(1-Discount/100).
type Product struct {
	ID            int      `json:"id" bson:"_id" yaml:"id"`
	Name          string   `json:"name" bson:"name" yaml:"name"`
	Description   string   `json:"description" bson:"description" yaml:"description"`
	Price         float64  `json:"price" bson:"price" yaml:"price"`
	Discount      int      `json:"discount" bson:"discount" yaml:"discount"`
	FinalPrice    float64  `json:"final_price" bson:"final_price" yaml:"final_price"`
	CategoryID    int      `json:"category_id" bson:"category_id" yaml:"category_id"`
	AverageRating float64  `json:"average_rating" bson:"average_rating" yaml:"average_rating"`
	ReviewCount   int      `json:"review_count" bson:"review_count" yaml:"review_count"`
	Stock         int      `json:"stock" bson:"stock" yaml:"stock"`
	Images        []Image  `json:"images" bson:"images" yaml:"images"`
	Reviews       []Review `json:"reviews" bson:"reviews" yaml:"reviews"`
}

// Normalize replaces missing image and review lists with empty ones so
// clients always receive both arrays.
func (p *Product) Normalize() {
	if p.Images == nil {
		p.Images = []Image{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
}

// Category groups products.
type Category struct {
	ID          int    `json:"id" bson:"_id" yaml:"id"`
	Name        string `json:"name" bson:"name" yaml:"name"`
	Description string `json:"description" bson:"description" yaml:"description"`
}

// CatalogData is the on-disk layout of a catalog snapshot (db.json).
type CatalogData struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// CreateReviewRequest is used for review submissions
type CreateReviewRequest struct {
	Rating       float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment      string  `json:"comment" validate:"required,max=2000"`
	ReviewerName string  `json:"reviewer_name" validate:"required,max=100"`
}
