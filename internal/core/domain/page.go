package domain

// PageRequest is a zero-based page index and a page size.
type PageRequest struct {
	Index int
	Size  int
}

// Offset is the number of rows to skip for this page.
func (r PageRequest) Offset() int {
	return r.Index * r.Size
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// NewPage builds a page and never returns nil content.
func NewPage[T any](content []T, total int64, req PageRequest) *Page[T] {
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages(total, req.Size),
		Number:        req.Index,
		Size:          req.Size,
	}
}

// EmptyPage is a page with no content and a zero total.
func EmptyPage[T any](req PageRequest) *Page[T] {
	return NewPage[T](nil, 0, req)
}

// MapPage converts every element of p and keeps its paging fields.
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	content := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		content = append(content, fn(v))
	}
	return NewPage(content, p.TotalElements, PageRequest{Index: p.Number, Size: p.Size})
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
