package dto

import "yamdb/internal/microservices/http-api/models"

// CreateCategoryRequest is shared by categories and genres; the name
// limit differs and is checked per resource in the service.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Slug string `json:"slug" binding:"required,max=20,slug"`
}

type CreateGenreRequest struct {
	Name string `json:"name" binding:"required,max=50"`
	Slug string `json:"slug" binding:"required,max=20,slug"`
}

// CatalogItemResponse is the read shape of both categories and genres
type CatalogItemResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromCategory(c *models.Category) CatalogItemResponse {
	return CatalogItemResponse{Name: c.Name, Slug: c.Slug}
}

func FromGenre(g *models.Genre) CatalogItemResponse {
	return CatalogItemResponse{Name: g.Name, Slug: g.Slug}
}
