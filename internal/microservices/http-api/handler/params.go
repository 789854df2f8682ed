package handler

import (
	"context"
	"strconv"
	"time"

	"yamdb/internal/microservices/http-api/dto"

	"github.com/gin-gonic/gin"
)

const handlerTimeout = 5 * time.Second

// requestContext bounds a handler's store work. A client abort cancels the
// request context and with it any open transaction.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), handlerTimeout)
}

// pagination reads page and page_size. ok is false when page is not a
// positive integer; page_size falls back to the default and is capped.
func pagination(c *gin.Context) (page, pageSize int, ok bool) {
	page = 1
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		page = n
	}

	pageSize = dto.DefaultPageSize
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > dto.MaxPageSize {
		pageSize = dto.MaxPageSize
	}
	return page, pageSize, true
}

// pathID parses a numeric path parameter. Anything else addresses nothing.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
