package response

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NewPageResponse converts domain items with conv and wraps them in a page.
// An empty input still yields an empty JSON array.
func NewPageResponse[S, T any](src []S, conv func(S) T, page, pageSize, total int) PageResponse[T] {
	items := make([]T, 0, len(src))
	for _, s := range src {
		items = append(items, conv(s))
	}

	return PageResponse[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
}
