package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Meta describes one page of a list response.
type Meta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Ok    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Meta  *Meta      `json:"meta,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, Envelope{Ok: true, Data: data, Meta: meta})
}

func Error(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, Envelope{Error: &ErrorBody{Code: code, Message: message, Details: details}})
}

// PageParams reads page and page_size. Bad values fall back to the first page
// of defaultPageSize and sizes are capped at maxPageSize.
func PageParams(c *gin.Context) (page, pageSize int) {
	page = queryInt(c, "page", 1)
	pageSize = queryInt(c, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Paginate slices an in-memory result set.
func Paginate[T any](items []T, page, pageSize int) ([]T, *Meta) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	total := len(items)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return items[start:end], &Meta{
		Total:      int64(total),
		TotalPages: (total + pageSize - 1) / pageSize,
		Page:       page,
		PageSize:   pageSize,
	}
}
