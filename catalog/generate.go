package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"artwaves-catalog/models"
)

var (
	styles = []string{
		"Abstract", "Impressionist", "Modern", "Contemporary", "Classical",
		"Minimalist", "Surreal", "Expressionist", "Pop Art", "Art Nouveau",
		"Gothic", "Renaissance", "Baroque", "Urban", "Folk Art",
	}
	subjects = []string{
		"Landscape", "Seascape", "Portrait", "Still Life", "Nature",
		"City Scene", "Figure", "Animal", "Architecture", "Garden",
		"Mountain", "Forest", "Ocean", "Street Scene", "Abstract Composition",
	}
	mediums = []string{
		"Oil", "Acrylic", "Watercolor", "Digital", "Mixed Media",
		"Charcoal", "Pencil", "Bronze", "Marble", "Clay",
		"Photography", "Ink", "Pastel", "Metal", "Glass",
	}
	descriptors = []string{
		"Vibrant", "Serene", "Dynamic", "Ethereal", "Bold",
		"Delicate", "Dramatic", "Mystical", "Elegant", "Whimsical",
		"Powerful", "Subtle", "Intricate", "Minimalist", "Complex",
	}
	reviewComments = []string{
		"Absolutely stunning piece! The colors are vibrant and the detail is incredible.",
		"Beautiful artwork that exceeded my expectations. Shipping was fast and secure.",
		"A masterpiece that brings life to my living room. Very happy with this purchase.",
		"The quality is exceptional. Even better in person than in the photos.",
		"Unique and captivating piece. The artist's talent really shines through.",
		"Great addition to my collection. The craftsmanship is outstanding.",
		"Love the artistic style and technique. A real conversation starter.",
		"Impressive work that shows great attention to detail.",
		"The colors and composition are perfectly balanced.",
		"A wonderful piece that brings joy every time I look at it.",
	}
	reviewerNames = []string{
		"John D.", "Sarah M.", "Michael R.", "Emma W.", "David L.",
		"Lisa K.", "Robert P.", "Anna S.", "James B.", "Maria C.",
	}
)

// DefaultCategories are the storefront's categories.
func DefaultCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Paintings", Description: "Original paintings in various styles and mediums"},
		{ID: 2, Name: "Digital Art", Description: "Digital artwork created using various software and techniques"},
		{ID: 3, Name: "Photography", Description: "Fine art photography prints in various styles"},
		{ID: 4, Name: "Sculptures", Description: "3D artworks in various materials"},
		{ID: 5, Name: "Mixed Media", Description: "Artworks combining multiple mediums and techniques"},
		{ID: 6, Name: "Drawings", Description: "Hand-drawn artwork using various materials"},
		{ID: 7, Name: "Abstract", Description: "Non-representational artwork in various styles"},
		{ID: 8, Name: "Portrait", Description: "Portrait artwork in various styles and mediums"},
	}
}

// Generate builds a synthetic catalog of count products over the default
// categories. The same rng seed yields the same catalog; review dates fall
// within the year before now.
func Generate(rng *rand.Rand, count int, now time.Time) models.CatalogData {
	categories := DefaultCategories()
	products := make([]models.Product, 0, count)

	for id := 1; id <= count; id++ {
		category := categories[rng.IntN(len(categories))]
		price := float64(between(rng, 100, 5000))
		discount := 0
		if rng.Float64() < 0.3 {
			discount = between(rng, 5, 30)
		}

		p := models.Product{
			ID:   id,
			Name: pick(rng, styles) + " " + pick(rng, subjects),
			Description: fmt.Sprintf("%s %s artwork in the %s category, showcasing unique artistic vision and masterful technique.",
				pick(rng, descriptors), pick(rng, mediums), category.Name),
			Price:      price,
			Discount:   discount,
			FinalPrice: math.Round(price*(1-float64(discount)/100)*100) / 100,
			CategoryID: category.ID,
			Stock:      between(rng, 1, 10),
			Images:     generateImages(id),
			Reviews:    generateReviews(rng, now),
		}
		p.AverageRating = AverageRating(p.Reviews)
		p.ReviewCount = len(p.Reviews)
		products = append(products, p)
	}

	return models.CatalogData{Categories: categories, Products: products}
}

func generateImages(productID int) []models.Image {
	base := productID * 3
	images := make([]models.Image, 3)
	for i := range images {
		images[i] = models.Image{
			URL:       fmt.Sprintf("https://picsum.photos/800/600?random=%d", base+i),
			IsPrimary: i == 0,
		}
	}
	return images
}

func generateReviews(rng *rand.Rand, now time.Time) []models.Review {
	yearAgo := now.AddDate(-1, 0, 0)
	span := now.Sub(yearAgo)

	n := between(rng, 0, 8)
	reviews := make([]models.Review, 0, n)
	for i := 1; i <= n; i++ {
		date := yearAgo.Add(time.Duration(rng.Int64N(int64(span))))
		reviews = append(reviews, models.Review{
			ID:           i,
			Rating:       float64(between(rng, 3, 5)),
			Comment:      pick(rng, reviewComments),
			ReviewerName: pick(rng, reviewerNames),
			Date:         date.UTC().Format(reviewDateLayout),
		})
	}
	return reviews
}

// between returns an int in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.IntN(len(words))]
}
