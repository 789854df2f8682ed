package service

import (
	"context"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
)

const msgAlreadyReviewed = "You have already reviewed this title."

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedResponse[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, p permission.Principal, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, p permission.Principal, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, p permission.Principal, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return lookupErr("title", err)
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedResponse[dto.ReviewResponse], error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginatedResponse(out, int(total), page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, lookupErr("review", err)
	}
	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

// Create posts the caller's review. The one-review-per-title rule is checked
// here and again by the uq_reviews_title_author constraint.
func (s *reviewService) Create(ctx context.Context, p permission.Principal, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := permission.Evaluate(p, permission.CreateFeedback, nil).Err(); err != nil {
		return nil, err
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if req.Score == nil {
		return nil, NewValidationError("score", "This field is required.")
	}

	exists, err := s.reviewRepo.ExistsForAuthor(ctx, titleID, p.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError(NonFieldErrors, msgAlreadyReviewed)
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: p.UserID,
		Text:     req.Text,
		Score:    *req.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, constraintErr(lookupErr("title", err))
	}
	metrics.FeedbackCreated.WithLabelValues("review").Inc()

	created, err := s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, lookupErr("review", err)
	}
	resp := dto.FromModelToReviewResponse(created)
	return &resp, nil
}

// Update never re-runs the duplicate check: title and author are fixed.
func (s *reviewService) Update(ctx context.Context, p permission.Principal, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, lookupErr("review", err)
	}
	if err := permission.Evaluate(p, permission.ModifyFeedback, &permission.Resource{AuthorID: review.AuthorID}).Err(); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, constraintErr(err)
	}

	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, p permission.Principal, titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return lookupErr("review", err)
	}
	if err := permission.Evaluate(p, permission.ModifyFeedback, &permission.Resource{AuthorID: review.AuthorID}).Err(); err != nil {
		return err
	}
	return lookupErr("review", s.reviewRepo.Delete(ctx, titleID, reviewID))
}
