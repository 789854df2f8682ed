package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTitleRequest references category and genres by slug
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Year        *int     `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"required,min=1,dive,required,max=20"`
	Category    string   `json:"category" binding:"required,max=20"`
}

// UpdateTitleRequest for partial updates; nil fields are left untouched
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre" binding:"omitempty,min=1,dive,required,max=20"`
	Category    *string   `json:"category" binding:"omitempty,max=20"`
}

// TitleResponse embeds the nested category/genres and the derived rating
type TitleResponse struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Year        int                   `json:"year"`
	Rating      *float64              `json:"rating"`
	Description string                `json:"description"`
	Genre       []CatalogItemResponse `json:"genre"`
	Category    *CatalogItemResponse  `json:"category"`
}

// FromModelToTitleResponse converts a Title model; rating is computed by the caller.
func FromModelToTitleResponse(t *models.Title, rating *float64) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genre:       make([]CatalogItemResponse, 0, len(t.Genres)),
	}
	for i := range t.Genres {
		resp.Genre = append(resp.Genre, FromGenre(&t.Genres[i]))
	}
	if t.Category != nil {
		c := FromCategory(t.Category)
		resp.Category = &c
	}
	return resp
}
