package pagination

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 500

	// MaxPage keeps (page-1)*limit inside int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts page and limit from the query string. Missing or
// invalid values fall back to the defaults; limit is capped at MaxLimit and
// page at MaxPage, so Offset never overflows.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewMeta(p Params, total int) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: pages,
	}
}

// Response builds the list envelope {<plural>: items, pagination: meta}.
func Response(plural string, items interface{}, p Params, total int) map[string]interface{} {
	return map[string]interface{}{
		plural:       items,
		"pagination": NewMeta(p, total),
	}
}
