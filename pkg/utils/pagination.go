package utils

// 分页默认值，信息流一页 20 条
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination 分页请求参数
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// PageResult 分页响应结果
type PageResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Normalize 修正非法页码和页大小，返回 offset 与 limit
func (p *Pagination) Normalize() (offset, limit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	return (p.Page - 1) * p.Limit, p.Limit
}

// NewPageResult 组装分页结果，页码与页大小取规范化之后的值
func NewPageResult(list interface{}, total int64, p Pagination) *PageResult {
	return &PageResult{List: list, Total: total, Page: p.Page, Limit: p.Limit}
}
