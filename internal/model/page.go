package model

// PageRequest 分页请求参数
type PageRequest struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// Normalize 修正非法的分页参数
func (p *PageRequest) Normalize() {
	if p.PageIndex < 1 {
		p.PageIndex = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
}

// Offset 返回 SQL OFFSET 值
func (p PageRequest) Offset() int {
	return (p.PageIndex - 1) * p.PageSize
}

// PageResult 分页结果
type PageResult[T any] struct {
	PageIndex   int  `json:"pageIndex"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	Items       []T  `json:"items"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// NewPageResult 组装分页结果
func NewPageResult[T any](req PageRequest, total int, items []T) PageResult[T] {
	totalPages := (total + req.PageSize - 1) / req.PageSize
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		PageIndex:   req.PageIndex,
		PageSize:    req.PageSize,
		Total:       total,
		TotalPages:  totalPages,
		Items:       items,
		HasPrevious: req.PageIndex > 1,
		HasNext:     req.PageIndex < totalPages,
	}
}
