package api

import (
	"context"
	"net/http"
)

// PermissionInfo is a backend permission.
type PermissionInfo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
	CreateTime  string  `json:"createTime,omitempty"`
	UpdateTime  string  `json:"updateTime,omitempty"`
	RoleIDs     []int64 `json:"roleIds,omitempty"`
}

// PermissionQuery filters GET /permissions.
type PermissionQuery struct {
	Name string `url:"name,omitempty"`
	Code string `url:"code,omitempty"`
	PageQuery
}

// PermissionCreateRequest is the body of POST /permissions.
type PermissionCreateRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// PermissionUpdateRequest is the body of PUT /permissions.
type PermissionUpdateRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name,omitempty"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// GetPermission returns one permission.
func (c *Client) GetPermission(ctx context.Context, id int64) (*PermissionInfo, error) {
	const route = "/permissions/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var perm PermissionInfo
	if err := c.fetch(ctx, get(route, pathID("/permissions", id), nil), &perm); err != nil {
		return nil, err
	}
	return &perm, nil
}

// ListPermissions returns one page of permissions.
func (c *Client) ListPermissions(ctx context.Context, q PermissionQuery) (*Page[PermissionInfo], error) {
	return fetchPage[PermissionInfo](ctx, c, get("/permissions", "/permissions", q))
}

// AllPermissions returns every permission without paging.
func (c *Client) AllPermissions(ctx context.Context) ([]PermissionInfo, error) {
	var perms []PermissionInfo
	if err := c.fetch(ctx, get("/permissions/all", "/permissions/all", nil), &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// CreatePermission creates a permission.
func (c *Client) CreatePermission(ctx context.Context, req PermissionCreateRequest) error {
	return c.fetch(ctx, send(http.MethodPost, "/permissions", "/permissions", req), nil)
}

// UpdatePermission updates a permission.
func (c *Client) UpdatePermission(ctx context.Context, req PermissionUpdateRequest) error {
	if err := requireID(http.MethodPut, "/permissions", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/permissions", "/permissions", req), nil)
}

// DeletePermission deletes a permission.
func (c *Client) DeletePermission(ctx context.Context, id int64) error {
	const route = "/permissions/{id}"
	if err := requireID(http.MethodDelete, route, id); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodDelete, route, pathID("/permissions", id), nil), nil)
}
