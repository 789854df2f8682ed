package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

type commentPath struct {
	titleID, reviewID, commentID int64
}

func parseCommentPath(c *gin.Context, withComment bool) (commentPath, bool) {
	var p commentPath
	var ok bool
	if p.titleID, p.reviewID, ok = reviewPath(c, true); !ok {
		return p, false
	}
	if withComment {
		if p.commentID, ok = pathID(c, "comment_id"); !ok {
			return p, false
		}
	}
	return p, true
}

// List returns the review's comments, newest first
// GET /v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) List(c *gin.Context) {
	p, ok := parseCommentPath(c, false)
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

	resp, err := h.commentService.List(ctx, p.titleID, p.reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /v1/titles/:title_id/reviews/:review_id/comments/:comment_id/
func (h *CommentHandler) Get(c *gin.Context) {
	p, ok := parseCommentPath(c, true)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.commentService.Get(ctx, p.titleID, p.reviewID, p.commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create creates a new comment on a review
// POST /v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) Create(c *gin.Context) {
	p, ok := parseCommentPath(c, false)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	var req dto.CreateCommentDTO
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.commentService.Create(ctx, middleware.PrincipalFrom(c), p.titleID, p.reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Update edits a comment (author, moderator or admin)
// PATCH /v1/titles/:title_id/reviews/:review_id/comments/:comment_id/
func (h *CommentHandler) Update(c *gin.Context) {
	p, ok := parseCommentPath(c, true)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	var req dto.UpdateCommentDTO
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.commentService.Update(ctx, middleware.PrincipalFrom(c), p.titleID, p.reviewID, p.commentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete deletes a comment
// DELETE /v1/titles/:title_id/reviews/:review_id/comments/:comment_id/
func (h *CommentHandler) Delete(c *gin.Context) {
	p, ok := parseCommentPath(c, true)
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.PrincipalFrom(c), p.titleID, p.reviewID, p.commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
