package service

import (
	"context"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedResponse[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, p permission.Principal, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, p permission.Principal, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, p permission.Principal, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// ensureReview resolves the parent review under its title.
func (s *commentService) ensureReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		return lookupErr("review", err)
	}
	return nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedResponse[dto.CommentResponse], error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginatedResponse(out, int(total), page, pageSize), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, lookupErr("comment", err)
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, p permission.Principal, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := permission.Evaluate(p, permission.CreateFeedback, nil).Err(); err != nil {
		return nil, err
	}
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: p.UserID,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		// parent deleted between the check and the insert
		return nil, lookupErr("review", err)
	}
	metrics.FeedbackCreated.WithLabelValues("comment").Inc()

	created, err := s.commentRepo.GetByID(ctx, reviewID, comment.ID)
	if err != nil {
		return nil, lookupErr("comment", err)
	}
	resp := dto.FromModelToCommentResponse(created)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, p permission.Principal, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, lookupErr("comment", err)
	}
	if err := permission.Evaluate(p, permission.ModifyFeedback, &permission.Resource{AuthorID: comment.AuthorID}).Err(); err != nil {
		return nil, err
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, p permission.Principal, titleID, reviewID, commentID int64) error {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return lookupErr("comment", err)
	}
	if err := permission.Evaluate(p, permission.ModifyFeedback, &permission.Resource{AuthorID: comment.AuthorID}).Err(); err != nil {
		return err
	}
	return lookupErr("comment", s.commentRepo.Delete(ctx, reviewID, commentID))
}
