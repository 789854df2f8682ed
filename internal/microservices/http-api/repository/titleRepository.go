package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows title listings. Zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

type TitleRepository interface {
	List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title, genreIDs []int64) error
	// Update writes the title row; when genreIDs is non-nil the genre set is replaced.
	Update(ctx context.Context, t *models.Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (f TitleFilter) scope(db *gorm.DB) *gorm.DB {
	if f.CategorySlug != "" {
		db = db.Where("category_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.GenreSlug != "" {
		genreIDs := db.Session(&gorm.Session{NewDB: true}).Model(&models.Genre{}).Select("id").Where("slug = ?", f.GenreSlug)
		db = db.Where("id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&models.TitleGenre{}).Select("title_id").Where("genre_id IN (?)", genreIDs))
	}
	if f.Name != "" {
		db = db.Where("name ILIKE ?", containsPattern(f.Name))
	}
	if f.Year != nil {
		db = db.Where("year = ?", *f.Year)
	}
	return db
}

func (r *titleRepository) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Title{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(f.scope).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		Order("id").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }).
		First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the title and its genre links in one transaction.
func (r *titleRepository) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", translate(err))
		}
		return linkGenres(tx, t.ID, genreIDs)
	})
	return err
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(t).
			Omit(clause.Associations).
			Select("name", "year", "description", "category_id").
			Updates(t)
		if result.Error != nil {
			return fmt.Errorf("update title: %w", translate(result.Error))
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.Where("title_id = ?", t.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return fmt.Errorf("clear genres: %w", err)
		}
		return linkGenres(tx, t.ID, genreIDs)
	})
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func linkGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.TitleGenre, 0, len(genreIDs))
	seen := make(map[int64]bool, len(genreIDs))
	for _, id := range genreIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link genres: %w", translate(err))
	}
	return nil
}
