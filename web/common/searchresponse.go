package common

type Pagination struct {
	Total int64 `json:"total"`
}

// SearchResponse is the envelope for listings (employees, attendance
// ranges, salary periods). Total currently equals len(data); it is kept
// separate so paging can land without changing the shape.
type SearchResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func NewSearchResponse(data interface{}, total int64) *SearchResponse {
	return &SearchResponse{
		Data: data,
		Pagination: Pagination{
			Total: total,
		},
	}
}
