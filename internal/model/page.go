package model

import "time"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageQuery selects one page of a listing. Pages are 1-based.
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalized clamps q to a valid page and size.
func (q PageQuery) Normalized() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > maxPageSize {
		q.PageSize = defaultPageSize
	}
	return q
}

// Offset is the number of rows before the page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one slice of a listing plus the totals needed to walk the rest.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPage wraps items fetched for q out of total rows.
func NewPage[T any](items []T, total int64, q PageQuery) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if q.PageSize > 0 {
		pages = int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	}
	return &Page[T]{Data: items, Total: total, Page: q.Page, PageSize: q.PageSize, TotalPages: pages}
}

// RegisterAccountResponse is returned by POST /accounts. The token is
// omitted when token issuing is not configured.
type RegisterAccountResponse struct {
	Account     *Account   `json:"account"`
	AccessToken string     `json:"access_token,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
