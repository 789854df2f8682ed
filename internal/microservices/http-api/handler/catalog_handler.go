package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves categories and genres. Both are addressed by slug.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GET /v1/categories/?search=
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		detail(c, http.StatusNotFound, "Invalid page.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.catalogService.ListCategories(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/categories/
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.catalogService.CreateCategory(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DELETE /v1/categories/:slug/
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalogService.DeleteCategory(ctx, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/genres/?search=
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		detail(c, http.StatusNotFound, "Invalid page.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.catalogService.ListGenres(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/genres/
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req dto.CreateGenreRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.catalogService.CreateGenre(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DELETE /v1/genres/:slug/
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalogService.DeleteGenre(ctx, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
