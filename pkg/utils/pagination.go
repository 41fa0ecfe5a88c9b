package utils

const (
	defaultPageSize = 10
	maxPageSize     = 100
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

// GetPageOffset 规范化页码与页大小，返回偏移量和页大小
func (p *Pagination) GetPageOffset() (int, int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = defaultPageSize
	case p.Limit > maxPageSize:
		p.Limit = maxPageSize
	}
	return (p.Page - 1) * p.Limit, p.Limit
}

// Result 在调用过 GetPageOffset 之后组装响应
func (p Pagination) Result(list interface{}, total int64) PageResult {
	return PageResult{List: list, Total: total, Page: p.Page, Limit: p.Limit}
}

// Window 对长度为 n 的内存列表取 [start, end)，limit <= 0 表示取到末尾
func Window(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		return n, n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
