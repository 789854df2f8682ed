package handler

import (
	"math"
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// List returns titles filtered by category, genre, name and year.
// GET /v1/titles/?category=&genre=&name=&year=
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		detail(c, http.StatusNotFound, "Invalid page.")
		return
	}

	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"year": []string{"Enter a number."}})
			return
		}
		// titles.year is a SMALLINT
		if year > math.MaxInt16 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"year": []string{"Ensure this value is less than or equal to 32767."}})
			return
		}
		if year < math.MinInt16 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"year": []string{"Ensure this value is greater than or equal to -32768."}})
			return
		}
		filter.Year = &year
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.titleService.List(ctx, filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /v1/titles/:title_id/
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.titleService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/titles/
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.titleService.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PATCH /v1/titles/:title_id/
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	var req dto.UpdateTitleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.titleService.Update(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /v1/titles/:title_id/
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.titleService.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
