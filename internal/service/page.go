package service

import (
	"fmt"
	"slices"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/store"
)

// MaxPage bounds the page number so the row offset cannot overflow.
const MaxPage = 100000

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// listParams holds the paging fields shared by set and flashcard listings.
type listParams struct {
	page      int
	limit     int
	sortBy    string
	sortOrder string
}

// normalize applies defaults to zero values and validates ranges and sort
// fields against allowed.
func (p *listParams) normalize(defaultLimit, maxLimit int, allowed []string) error {
	if p.page == 0 {
		p.page = 1
	}
	if p.limit == 0 {
		p.limit = defaultLimit
	}
	if p.sortBy == "" {
		p.sortBy = "created_at"
	}
	if p.sortOrder == "" {
		p.sortOrder = string(store.SortDesc)
	}

	if p.page < 1 || p.page > MaxPage {
		return domain.NewValidationError("page", fmt.Sprintf("must be between 1 and %d", MaxPage), nil)
	}
	if p.limit < 1 || p.limit > maxLimit {
		return domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxLimit), nil)
	}
	if !slices.Contains(allowed, p.sortBy) {
		return domain.NewValidationError("sort_by", fmt.Sprintf("must be one of %v", allowed), nil)
	}
	if p.sortOrder != string(store.SortAsc) && p.sortOrder != string(store.SortDesc) {
		return domain.NewValidationError("sort_order", "must be asc or desc", nil)
	}
	return nil
}
