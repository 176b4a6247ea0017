package api

import (
	"context"
	"net/http"
	"strconv"
)

// RoleInfo is a backend role.
type RoleInfo struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Description   string  `json:"description,omitempty"`
	RoleType      string  `json:"roleType"`
	CreateTime    string  `json:"createTime,omitempty"`
	UpdateTime    string  `json:"updateTime,omitempty"`
	PermissionIDs []int64 `json:"permissionIds,omitempty"`
}

// RoleQuery filters GET /roles.
type RoleQuery struct {
	Name     string `url:"name,omitempty"`
	Code     string `url:"code,omitempty"`
	RoleType string `url:"roleType,omitempty"`
	PageQuery
}

// RoleCreateRequest is the body of POST /roles.
type RoleCreateRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	RoleType    string `json:"roleType"`
}

// RoleUpdateRequest is the body of PUT /roles.
type RoleUpdateRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name,omitempty"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	RoleType    string `json:"roleType,omitempty"`
}

type rolePermissionAssign struct {
	RoleID        int64   `json:"roleId"`
	PermissionIDs []int64 `json:"permissionIds"`
}

// GetRole returns one role.
func (c *Client) GetRole(ctx context.Context, id int64) (*RoleInfo, error) {
	const route = "/roles/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var role RoleInfo
	if err := c.fetch(ctx, get(route, pathID("/roles", id), nil), &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles returns one page of roles.
func (c *Client) ListRoles(ctx context.Context, q RoleQuery) (*Page[RoleInfo], error) {
	return fetchPage[RoleInfo](ctx, c, get("/roles", "/roles", q))
}

// CreateRole creates a role.
func (c *Client) CreateRole(ctx context.Context, req RoleCreateRequest) error {
	return c.fetch(ctx, send(http.MethodPost, "/roles", "/roles", req), nil)
}

// UpdateRole updates a role.
func (c *Client) UpdateRole(ctx context.Context, req RoleUpdateRequest) error {
	if err := requireID(http.MethodPut, "/roles", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/roles", "/roles", req), nil)
}

// DeleteRole deletes a role.
func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	const route = "/roles/{id}"
	if err := requireID(http.MethodDelete, route, id); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodDelete, route, pathID("/roles", id), nil), nil)
}

// RolePermissions returns the permission ids granted to a role.
func (c *Client) RolePermissions(ctx context.Context, roleID int64) ([]int64, error) {
	const route = "/roles/{id}/permissions"
	if err := requireID(http.MethodGet, route, roleID); err != nil {
		return nil, err
	}
	var ids []int64
	if err := c.fetch(ctx, get(route, pathID("/roles", roleID, "permissions"), nil), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AssignPermissions grants permissionIDs to a role.
func (c *Client) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	const route = "/roles/{id}/permissions"
	if err := requireID(http.MethodPost, route, roleID); err != nil {
		return err
	}
	if permissionIDs == nil {
		permissionIDs = []int64{}
	}
	body := rolePermissionAssign{RoleID: roleID, PermissionIDs: permissionIDs}
	return c.fetch(ctx, send(http.MethodPost, route, pathID("/roles", roleID, "permissions"), body), nil)
}

// RemovePermission revokes one permission from a role.
func (c *Client) RemovePermission(ctx context.Context, roleID, permissionID int64) error {
	const route = "/roles/{id}/permissions/{permissionId}"
	if err := requireID(http.MethodDelete, route, roleID); err != nil {
		return err
	}
	if err := requireID(http.MethodDelete, route, permissionID); err != nil {
		return err
	}
	path := pathID("/roles", roleID, "permissions", strconv.FormatInt(permissionID, 10))
	return c.fetch(ctx, send(http.MethodDelete, route, path, nil), nil)
}

// RoleUsers returns the ids of users holding a role.
func (c *Client) RoleUsers(ctx context.Context, roleID int64) ([]int64, error) {
	const route = "/roles/{id}/users"
	if err := requireID(http.MethodGet, route, roleID); err != nil {
		return nil, err
	}
	var ids []int64
	if err := c.fetch(ctx, get(route, pathID("/roles", roleID, "users"), nil), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
