package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// CatalogService manages categories and genres. Both are addressed by slug.
type CatalogService interface {
	ListCategories(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error)
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CatalogItemResponse, error)
	DeleteCategory(ctx context.Context, slug string) error

	ListGenres(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error)
	CreateGenre(ctx context.Context, req dto.CreateGenreRequest) (*dto.CatalogItemResponse, error)
	DeleteGenre(ctx context.Context, slug string) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, genreRepo repository.GenreRepository) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *catalogService) ListCategories(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error) {
	list, total, err := s.categoryRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CatalogItemResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.FromCategory(&list[i]))
	}
	return dto.NewPaginatedResponse(out, int(total), page, pageSize), nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CatalogItemResponse, error) {
	_, err := s.categoryRepo.FindBySlug(ctx, req.Slug)
	if err == nil {
		return nil, NewValidationError("slug", "category with this slug already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, constraintErr(err)
	}
	resp := dto.FromCategory(c)
	return &resp, nil
}

// DeleteCategory leaves the titles in place with no category.
func (s *catalogService) DeleteCategory(ctx context.Context, slug string) error {
	return lookupErr("category", s.categoryRepo.DeleteBySlug(ctx, slug))
}

func (s *catalogService) ListGenres(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedResponse[dto.CatalogItemResponse], error) {
	list, total, err := s.genreRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CatalogItemResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.FromGenre(&list[i]))
	}
	return dto.NewPaginatedResponse(out, int(total), page, pageSize), nil
}

func (s *catalogService) CreateGenre(ctx context.Context, req dto.CreateGenreRequest) (*dto.CatalogItemResponse, error) {
	_, err := s.genreRepo.FindBySlug(ctx, req.Slug)
	if err == nil {
		return nil, NewValidationError("slug", "genre with this slug already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	g := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.genreRepo.Create(ctx, g); err != nil {
		return nil, constraintErr(err)
	}
	resp := dto.FromGenre(g)
	return &resp, nil
}

func (s *catalogService) DeleteGenre(ctx context.Context, slug string) error {
	return lookupErr("genre", s.genreRepo.DeleteBySlug(ctx, slug))
}
