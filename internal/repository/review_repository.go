package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/reviewrelay/review-relay/internal/model"
	"gorm.io/gorm"
)

// ReviewRepository is the MySQL-backed ReviewStore
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository instance
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review record
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by ID, returning (nil, nil) when absent
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// UpdateStatus updates the delivery status of a review
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error; err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}
	return nil
}
