package api

import (
	"context"
	"net/http"
)

// Project is a backend project.
type Project struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Code            string        `json:"code"`
	Description     string        `json:"description,omitempty"`
	ManagerID       int64         `json:"managerId,omitempty"`
	Status          ProjectStatus `json:"status"`
	PlanStartDate   string        `json:"planStartDate,omitempty"`
	PlanEndDate     string        `json:"planEndDate,omitempty"`
	ActualStartDate string        `json:"actualStartDate,omitempty"`
	ActualEndDate   string        `json:"actualEndDate,omitempty"`
	CreateUserID    int64         `json:"createUserId,omitempty"`
	CreateUserName  string        `json:"createUserName,omitempty"`
	UpdateUserID    int64         `json:"updateUserId,omitempty"`
	UpdateUserName  string        `json:"updateUserName,omitempty"`
	CreateTime      string        `json:"createTime,omitempty"`
	UpdateTime      string        `json:"updateTime,omitempty"`
}

// ProjectQuery filters GET /projects.
type ProjectQuery struct {
	Name   string        `url:"name,omitempty"`
	Status ProjectStatus `url:"status,omitempty"`
	PageQuery
}

// ProjectCreateRequest is the body of POST /projects.
type ProjectCreateRequest struct {
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	Description string        `json:"description,omitempty"`
	ManagerID   int64         `json:"managerId"`
	Status      ProjectStatus `json:"status"`
}

// ProjectUpdateRequest is the body of PUT /projects.
type ProjectUpdateRequest struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
}

// ListProjects returns one page of projects.
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) (*Page[Project], error) {
	return fetchPage[Project](ctx, c, get("/projects", "/projects", q))
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id int64) (*Project, error) {
	const route = "/projects/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var p Project
	if err := c.fetch(ctx, get(route, pathID("/projects", id), nil), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, req ProjectCreateRequest) error {
	if req.Status == 0 {
		req.Status = ProjectNotStarted
	}
	return c.fetch(ctx, send(http.MethodPost, "/projects", "/projects", req), nil)
}

// UpdateProject updates a project.
func (c *Client) UpdateProject(ctx context.Context, req ProjectUpdateRequest) error {
	if err := requireID(http.MethodPut, "/projects", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/projects", "/projects", req), nil)
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	const route = "/projects/{id}"
	if err := requireID(http.MethodDelete, route, id); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodDelete, route, pathID("/projects", id), nil), nil)
}
