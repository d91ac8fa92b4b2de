package service

import (
	"math"

	"github.com/lalith-99/tasklane/internal/repository"
)

const (
	defaultPageLimit   = 50
	defaultTenantLimit = 10
	maxPageLimit       = 100
	// maxPage keeps (page-1)*limit inside a Postgres integer OFFSET. Pages
	// past it are empty anyway.
	maxPage = math.MaxInt32 / maxPageLimit
)

// PageRequest is the page/limit pair read from the query string. Zero or
// negative values fall back to the defaults.
type PageRequest struct {
	Page  int
	Limit int
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Limit       int `json:"limit"`
}

func (r PageRequest) normalize(defaultLimit int) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Page > maxPage {
		r.Page = maxPage
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxPageLimit {
		r.Limit = maxPageLimit
	}
	return r
}

func (r PageRequest) window() repository.Page {
	return repository.Page{Limit: r.Limit, Offset: (r.Page - 1) * r.Limit}
}

// paginate describes the page r of total rows. An empty result still
// reports one page.
func paginate(r PageRequest, total int) Pagination {
	pages := (total + r.Limit - 1) / r.Limit
	if pages < 1 {
		pages = 1
	}
	return Pagination{CurrentPage: r.Page, TotalPages: pages, Limit: r.Limit}
}
