package api

import (
	"context"
	"net/http"
)

// UserInfo is a backend user account.
type UserInfo struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Nickname       string `json:"nickname"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	DepartmentID   int64  `json:"departmentId,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
	Status         Flex   `json:"status,omitempty"`
	CreateTime     string `json:"createTime,omitempty"`
}

// UserQuery filters GET /users.
type UserQuery struct {
	Username     string `url:"username,omitempty"`
	Nickname     string `url:"nickname,omitempty"`
	DepartmentID int64  `url:"departmentId,omitempty"`
	Status       int    `url:"status,omitempty"`
	PageQuery
}

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, q UserQuery) (*Page[UserInfo], error) {
	return fetchPage[UserInfo](ctx, c, get("/users", "/users", q))
}

// AllUsers returns every user in a single large page, as used for pickers.
func (c *Client) AllUsers(ctx context.Context) ([]UserInfo, error) {
	page, err := c.ListUsers(ctx, UserQuery{PageQuery: PageQuery{PageNum: 1, PageSize: 1000}})
	if err != nil {
		return nil, err
	}
	return page.List, nil
}

// FetchUserPermissions returns the permission codes granted to userID.
func (c *Client) FetchUserPermissions(ctx context.Context, userID int64) ([]string, error) {
	const route = "/users/{id}/permissions"
	if err := requireID(http.MethodGet, route, userID); err != nil {
		return nil, err
	}
	var codes []string
	if err := c.fetch(ctx, get(route, pathID("/users", userID, "permissions"), nil), &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// FetchUserRoles returns the role ids assigned to userID.
func (c *Client) FetchUserRoles(ctx context.Context, userID int64) ([]int64, error) {
	const route = "/users/{id}/roles"
	if err := requireID(http.MethodGet, route, userID); err != nil {
		return nil, err
	}
	var roles []int64
	if err := c.fetch(ctx, get(route, pathID("/users", userID, "roles"), nil), &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
