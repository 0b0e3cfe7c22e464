package models

// PagedResult is one page of an ordered result set.
// TotalPages = ceil(TotalCount / PageSize).
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Paginate slices items into 1-indexed pages of pageSize. It is a pure
// function of its inputs: item order is preserved, a page past the end
// yields an empty Items slice, and non-positive page/pageSize fall back to
// the defaults (page 1, size 10).
func Paginate[T any](items []T, page, pageSize int) PagedResult[T] {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return PagedResult[T]{
		Items:      pageItems,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
