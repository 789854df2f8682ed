package service

import (
	"context"
	"errors"
	"math"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

const msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.PaginatedResponse[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	now          func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		now:          time.Now,
	}
}

// roundRating rounds to two decimals, ties to even: 8.125 becomes 8.12.
func roundRating(avg float64) float64 {
	return math.RoundToEven(avg*100) / 100
}

// ratings computes the read-time rating of every title in ts. Titles
// without reviews map to nil.
func (s *titleService) ratings(ctx context.Context, ts []models.Title) (map[int64]*float64, error) {
	ids := make([]int64, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	avgs, err := s.reviewRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*float64, len(ts))
	for _, id := range ids {
		if avg, ok := avgs[id]; ok {
			r := roundRating(avg)
			out[id] = &r
		}
	}
	return out, nil
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, page, pageSize int) (*dto.PaginatedResponse[dto.TitleResponse], error) {
	verr := &ValidationError{}
	if f.CategorySlug != "" {
		if _, err := s.categoryRepo.FindBySlug(ctx, f.CategorySlug); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			verr.Add("category", msgInvalidChoice)
		}
	}
	if f.GenreSlug != "" {
		if _, err := s.genreRepo.FindBySlug(ctx, f.GenreSlug); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			verr.Add("genre", msgInvalidChoice)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	titles, total, err := s.titleRepo.List(ctx, f, page, pageSize)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings(ctx, titles)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		out = append(out, dto.FromModelToTitleResponse(&titles[i], ratings[titles[i].ID]))
	}
	return dto.NewPaginatedResponse(out, int(total), page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("title", err)
	}
	return s.respond(ctx, t)
}

func (s *titleService) respond(ctx context.Context, t *models.Title) (*dto.TitleResponse, error) {
	ratings, err := s.ratings(ctx, []models.Title{*t})
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToTitleResponse(t, ratings[t.ID])
	return &resp, nil
}

// validateYear checks the year against the server clock at write time.
func (s *titleService) validateYear(year int, verr *ValidationError) {
	if year < 0 {
		verr.Add("year", "Ensure this value is greater than or equal to 0.")
	}
	if year > s.now().Year() {
		verr.Add("year", "Year cannot be greater than the current year.")
	}
}

func (s *titleService) resolveCategory(ctx context.Context, slug string, verr *ValidationError) (*int64, error) {
	c, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verr.Add("category", `Object with slug="`+slug+`" does not exist.`)
			return nil, nil
		}
		return nil, err
	}
	return &c.ID, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string, verr *ValidationError) ([]int64, error) {
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]int64, len(genres))
	for _, g := range genres {
		bySlug[g.Slug] = g.ID
	}
	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		id, ok := bySlug[slug]
		if !ok {
			verr.Add("genre", `Object with slug="`+slug+`" does not exist.`)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	verr := &ValidationError{}
	year := 0
	if req.Year == nil {
		verr.Add("year", "This field is required.")
	} else {
		year = *req.Year
		s.validateYear(year, verr)
	}
	categoryID, err := s.resolveCategory(ctx, req.Category, verr)
	if err != nil {
		return nil, err
	}
	genreIDs, err := s.resolveGenres(ctx, req.Genre, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        req.Name,
		Year:        year,
		Description: req.Description,
		CategoryID:  categoryID,
	}
	if err := s.titleRepo.Create(ctx, t, genreIDs); err != nil {
		return nil, constraintErr(lookupErr("category", err))
	}

	created, err := s.titleRepo.GetByID(ctx, t.ID)
	if err != nil {
		return nil, lookupErr("title", err)
	}
	return s.respond(ctx, created)
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("title", err)
	}

	verr := &ValidationError{}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Year != nil {
		s.validateYear(*req.Year, verr)
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category, verr)
		if err != nil {
			return nil, err
		}
		t.CategoryID = categoryID
	}
	var genreIDs []int64
	if req.Genre != nil {
		if genreIDs, err = s.resolveGenres(ctx, *req.Genre, verr); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.titleRepo.Update(ctx, t, genreIDs); err != nil {
		return nil, constraintErr(lookupErr("title", err))
	}

	updated, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("title", err)
	}
	return s.respond(ctx, updated)
}

// Delete removes the title; reviews and their comments go with it.
func (s *titleService) Delete(ctx context.Context, id int64) error {
	return lookupErr("title", s.titleRepo.Delete(ctx, id))
}
