package api

import (
	"context"
	"net/http"
)

// Menu item types.
const (
	MenuDirectory = 1
	MenuPage      = 2
	MenuButton    = 3
)

// MenuInfo is a node of the console navigation tree.
type MenuInfo struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Path          string     `json:"path,omitempty"`
	Component     string     `json:"component,omitempty"`
	Icon          string     `json:"icon,omitempty"`
	ParentID      int64      `json:"parentId"`
	Sort          int        `json:"sort"`
	Type          int        `json:"type"`
	Status        int        `json:"status"`
	Visible       int        `json:"visible"`
	PermissionIDs []int64    `json:"permissionIds,omitempty"`
	Children      []MenuInfo `json:"children,omitempty"`
	CreateTime    string     `json:"createTime,omitempty"`
	UpdateTime    string     `json:"updateTime,omitempty"`
}

// IsVisible reports whether the item is shown (visible == 1).
func (m MenuInfo) IsVisible() bool {
	return m.Visible == 1
}

// WalkMenus calls fn for every node of tree depth first. depth starts at 0.
// Returning false from fn skips the node's children.
func WalkMenus(tree []MenuInfo, fn func(m MenuInfo, depth int) bool) {
	var walk func(nodes []MenuInfo, depth int)
	walk = func(nodes []MenuInfo, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(tree, 0)
}

// UserMenuTree returns the menu tree filtered to the current user.
func (c *Client) UserMenuTree(ctx context.Context) ([]MenuInfo, error) {
	var tree []MenuInfo
	if err := c.fetch(ctx, get("/menus/user/tree", "/menus/user/tree", nil), &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// MenuTree returns the full menu tree.
func (c *Client) MenuTree(ctx context.Context) ([]MenuInfo, error) {
	var tree []MenuInfo
	if err := c.fetch(ctx, get("/menus/tree", "/menus/tree", nil), &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// GetMenu returns one menu item.
func (c *Client) GetMenu(ctx context.Context, id int64) (*MenuInfo, error) {
	const route = "/menus/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var m MenuInfo
	if err := c.fetch(ctx, get(route, pathID("/menus", id), nil), &m); err != nil {
		return nil, err
	}
	return &m, nil
}
