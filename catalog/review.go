package catalog

import (
	"math"
	"slices"
	"time"

	"artwaves-catalog/models"
)

// reviewDateLayout matches the ISO-8601 dates already stored with reviews.
const reviewDateLayout = "2006-01-02T15:04:05.000Z"

// AddReview appends a review to p and refreshes its rating summary.
// The new review id is one past the current review count.
func AddReview(p *models.Product, in models.CreateReviewRequest, now time.Time) models.Review {
	review := models.Review{
		ID:           len(p.Reviews) + 1,
		Rating:       in.Rating,
		Comment:      in.Comment,
		ReviewerName: in.ReviewerName,
		Date:         now.UTC().Format(reviewDateLayout),
	}
	p.Reviews = append(slices.Clip(p.Reviews), review)
	p.AverageRating = AverageRating(p.Reviews)
	p.ReviewCount = len(p.Reviews)
	return review
}

// AverageRating is the mean rating rounded to one decimal, 0 without reviews.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(sum/float64(len(reviews))*10) / 10
}
