package api

import "context"

// DepartmentInfo is an organisational unit.
type DepartmentInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ParentID   int64  `json:"parentId"`
	Level      int    `json:"level"`
	Sort       int    `json:"sort"`
	Remark     string `json:"remark,omitempty"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// DepartmentQuery filters GET /departments.
type DepartmentQuery struct {
	Name     string `url:"name,omitempty"`
	ParentID int64  `url:"parentId,omitempty"`
	PageQuery
}

// ListDepartments returns one page of departments.
func (c *Client) ListDepartments(ctx context.Context, q DepartmentQuery) (*Page[DepartmentInfo], error) {
	return fetchPage[DepartmentInfo](ctx, c, get("/departments", "/departments", q))
}
