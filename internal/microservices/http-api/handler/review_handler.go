package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// reviewPath resolves :title_id and :review_id. withReview=false skips the
// review id for collection routes.
func reviewPath(c *gin.Context, withReview bool) (titleID, reviewID int64, ok bool) {
	if titleID, ok = pathID(c, "title_id"); !ok {
		return 0, 0, false
	}
	if !withReview {
		return titleID, 0, true
	}
	if reviewID, ok = pathID(c, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// GET /v1/titles/:title_id/reviews/
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, _, ok := reviewPath(c, false)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	page, pageSize, ok := pagination(c)
	if !ok {
		detail(c, http.StatusNotFound, "Invalid page.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.reviewService.List(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c, true)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.reviewService.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/titles/:title_id/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, _, ok := reviewPath(c, false)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.reviewService.Create(ctx, middleware.PrincipalFrom(c), titleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PATCH /v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c, true)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.reviewService.Update(ctx, middleware.PrincipalFrom(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /v1/titles/:title_id/reviews/:review_id/
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c, true)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.reviewService.Delete(ctx, middleware.PrincipalFrom(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
