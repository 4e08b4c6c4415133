package service

import "go-inventory-ledger/internal/repository"

const MaxPageLimit = 1000

// Pagination is the page metadata returned next to product and ledger lists.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
	Limit        int   `json:"limit"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

func newPagination(page repository.Page, total int64) Pagination {
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))
	return Pagination{
		CurrentPage:  page.Number,
		TotalPages:   totalPages,
		TotalRecords: total,
		Limit:        page.Limit,
		HasNextPage:  page.Number < totalPages,
		HasPrevPage:  page.Number > 1,
	}
}

// pageFor applies defaultLimit when limit is zero and checks the bounds.
func pageFor(number, limit, defaultLimit int) (repository.Page, error) {
	if number == 0 {
		number = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if number < 1 {
		return repository.Page{}, invalid("page", "must be at least 1")
	}
	if limit < 1 || limit > MaxPageLimit {
		return repository.Page{}, invalid("limit", "must be between 1 and 1000")
	}
	return repository.Page{Number: number, Limit: limit}, nil
}
