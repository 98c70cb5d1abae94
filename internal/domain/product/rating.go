// internal/domain/product/rating.go
package product

import (
	"errors"
	"fmt"

	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// AddRatingRequest represents rating submission data
type AddRatingRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=500"`
}

// RatingSummary is the aggregate state after a rating insertion
type RatingSummary struct {
	ProductID     uint    `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// AddRating records a user's rating of a product and recomputes the
// product's rating aggregate in the same transaction, so readers never
// observe a rating count without its matching average. Each user may
// rate a product at most once; a second attempt fails with
// apperr.ErrDuplicateRating and leaves the aggregate untouched.
func (s *Service) AddRating(productID, userID uint, req *AddRatingRequest) (*RatingSummary, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Validation("rating", "must be between 1 and 5")
	}

	var summary RatingSummary

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var prod Product
		if err := tx.First(&prod, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		var existing ProductRating
		err := tx.Where("product_id = ? AND user_id = ?", productID, userID).
			First(&existing).Error
		if err == nil {
			return apperr.ErrDuplicateRating
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing rating: %w", err)
		}

		rating := ProductRating{
			ProductID: productID,
			UserID:    userID,
			Rating:    req.Rating,
			Review:    req.Review,
		}
		if err := tx.Create(&rating).Error; err != nil {
			return fmt.Errorf("failed to create rating: %w", err)
		}

		// Recompute the aggregate from the stored ratings rather than
		// adjusting it incrementally, so the columns always match the
		// rating rows exactly.
		var stats struct {
			Avg   float64
			Count int64
		}
		err = tx.Model(&ProductRating{}).
			Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
			Where("product_id = ?", productID).
			Scan(&stats).Error
		if err != nil {
			return fmt.Errorf("failed to compute rating aggregate: %w", err)
		}

		err = tx.Model(&Product{}).
			Where("id = ?", productID).
			Updates(map[string]interface{}{
				"average_rating": stats.Avg,
				"total_reviews":  stats.Count,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update rating aggregate: %w", err)
		}

		summary = RatingSummary{
			ProductID:     productID,
			AverageRating: stats.Avg,
			TotalReviews:  int(stats.Count),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// GetRatings retrieves all ratings for a product, newest first
func (s *Service) GetRatings(productID uint) ([]ProductRating, error) {
	var count int64
	if err := s.db.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return nil, apperr.ErrNotFound
	}

	var ratings []ProductRating
	err := s.db.
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve ratings: %w", err)
	}

	return ratings, nil
}
