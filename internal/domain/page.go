package domain

// Pagination and sorting defaults applied when request parameters are omitted.
const (
	DefaultPageNo   = 0
	DefaultPageSize = 10
	DefaultSortBy   = "id"
	SortAsc         = "asc"
	SortDesc        = "desc"
)

// PageRequest carries pagination and sorting parameters into a listing query.
// PageNo is zero-indexed.
type PageRequest struct {
	PageNo   int
	PageSize int
	SortBy   string
	SortDir  string
}

// Limit returns the SQL LIMIT value.
func (r PageRequest) Limit() int { return r.PageSize }

// Offset returns the SQL OFFSET value.
func (r PageRequest) Offset() int { return r.PageNo * r.PageSize }

// Descending reports whether results should be sorted in descending order.
func (r PageRequest) Descending() bool { return r.SortDir == SortDesc }

// Page is one bounded, sorted slice of a larger result set.
type Page[T any] struct {
	Content          []T   `json:"content"`
	PageNo           int   `json:"pageNo"`
	PageSize         int   `json:"pageSize"`
	TotalElements    int64 `json:"totalElements"`
	NumberOfElements int   `json:"numberOfElements"`
	TotalPages       int   `json:"totalPages"`
	Last             bool  `json:"last"`
}

// NewPage assembles a Page from query results and the total row count.
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return &Page[T]{
		Content:          content,
		PageNo:           req.PageNo,
		PageSize:         req.PageSize,
		TotalElements:    total,
		NumberOfElements: len(content),
		TotalPages:       totalPages,
		Last:             req.PageNo >= totalPages-1,
	}
}

// MapPage converts a page's content while keeping its metadata.
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	content := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, fn(item))
	}
	return &Page[U]{
		Content:          content,
		PageNo:           p.PageNo,
		PageSize:         p.PageSize,
		TotalElements:    p.TotalElements,
		NumberOfElements: p.NumberOfElements,
		TotalPages:       p.TotalPages,
		Last:             p.Last,
	}
}
