package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, titleID, reviewID int64) error
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error)
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create a new review; a second review by the same author comes back as *UniqueViolation.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

// Update writes text and score only; title and author never change.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).
		Model(review).
		Omit(clause.Associations).
		Select("text", "score").
		Updates(review).Error)
}

// Delete removes the review and, through the schema, its comments.
func (r *reviewRepository) Delete(ctx context.Context, titleID, reviewID int64) error {
	result := r.db.WithContext(ctx).Where("id = ? AND title_id = ?", reviewID, titleID).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID scopes the lookup to the title so a review is only reachable under its own title.
func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByTitle returns reviews newest first.
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC, id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	return count > 0, err
}

// AverageScores returns AVG(score) per title. Titles without reviews are
// absent from the map.
func (r *reviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("title_id, AVG(score)::float8 AS average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.TitleID] = row.Average
	}
	return out, nil
}
