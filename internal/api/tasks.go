package api

import (
	"context"
	"net/http"
)

// TaskInfo is a backend task.
type TaskInfo struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	ProjectID       int64  `json:"projectId"`
	ProjectName     string `json:"projectName,omitempty"`
	IterationID     int64  `json:"iterationId,omitempty"`
	IterationName   string `json:"iterationName,omitempty"`
	ParentID        int64  `json:"parentId,omitempty"`
	AssigneeID      int64  `json:"assigneeId,omitempty"`
	AssigneeName    string `json:"assigneeName,omitempty"`
	Status          Flex   `json:"status"`
	Priority        Flex   `json:"priority"`
	Type            Flex   `json:"type,omitempty"`
	PlanStartDate   string `json:"planStartDate,omitempty"`
	PlanEndDate     string `json:"planEndDate,omitempty"`
	ActualStartDate string `json:"actualStartDate,omitempty"`
	ActualEndDate   string `json:"actualEndDate,omitempty"`
	CreateTime      string `json:"createTime,omitempty"`
	UpdateTime      string `json:"updateTime,omitempty"`
}

// TaskQuery filters GET /tasks/search.
type TaskQuery struct {
	ProjectID   int64  `url:"projectId,omitempty"`
	AssigneeID  int64  `url:"assigneeId,omitempty"`
	IterationID int64  `url:"iterationId,omitempty"`
	Status      string `url:"status,omitempty"`
	PageQuery
}

// TaskCreateRequest is the body of POST /tasks.
type TaskCreateRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	ProjectID     int64  `json:"projectId"`
	IterationID   int64  `json:"iterationId,omitempty"`
	ParentID      int64  `json:"parentId,omitempty"`
	AssigneeID    int64  `json:"assigneeId,omitempty"`
	Priority      Flex   `json:"priority,omitempty"`
	PlanStartDate string `json:"planStartDate,omitempty"`
	PlanEndDate   string `json:"planEndDate,omitempty"`
}

// TaskUpdateRequest is the body of PUT /tasks.
type TaskUpdateRequest struct {
	ID              int64  `json:"id"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	ProjectID       int64  `json:"projectId,omitempty"`
	IterationID     int64  `json:"iterationId,omitempty"`
	ParentID        int64  `json:"parentId,omitempty"`
	AssigneeID      int64  `json:"assigneeId,omitempty"`
	Priority        Flex   `json:"priority,omitempty"`
	Status          Flex   `json:"status,omitempty"`
	PlanStartDate   string `json:"planStartDate,omitempty"`
	PlanEndDate     string `json:"planEndDate,omitempty"`
	ActualStartDate string `json:"actualStartDate,omitempty"`
	ActualEndDate   string `json:"actualEndDate,omitempty"`
}

// TaskStatusRequest is the body of PUT /tasks/status, the lightweight
// status-only update.
type TaskStatusRequest struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	ActualStartDate string `json:"actualStartDate,omitempty"`
	ActualEndDate   string `json:"actualEndDate,omitempty"`
}

// SearchTasks returns one page of tasks.
func (c *Client) SearchTasks(ctx context.Context, q TaskQuery) (*Page[TaskInfo], error) {
	return fetchPage[TaskInfo](ctx, c, get("/tasks/search", "/tasks/search", q))
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id int64) (*TaskInfo, error) {
	const route = "/tasks/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var task TaskInfo
	if err := c.fetch(ctx, get(route, pathID("/tasks", id), nil), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Subtasks returns the direct children of a task.
func (c *Client) Subtasks(ctx context.Context, parentID int64) ([]TaskInfo, error) {
	const route = "/tasks/{id}/subtasks"
	if err := requireID(http.MethodGet, route, parentID); err != nil {
		return nil, err
	}
	var tasks []TaskInfo
	if err := c.fetch(ctx, get(route, pathID("/tasks", parentID, "subtasks"), nil), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) error {
	return c.fetch(ctx, send(http.MethodPost, "/tasks", "/tasks", req), nil)
}

// UpdateTask updates a task.
func (c *Client) UpdateTask(ctx context.Context, req TaskUpdateRequest) error {
	if err := requireID(http.MethodPut, "/tasks", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/tasks", "/tasks", req), nil)
}

// UpdateTaskStatus changes only the status and actual dates of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, req TaskStatusRequest) error {
	if err := requireID(http.MethodPut, "/tasks/status", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/tasks/status", "/tasks/status", req), nil)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	const route = "/tasks/{id}"
	if err := requireID(http.MethodDelete, route, id); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodDelete, route, pathID("/tasks", id), nil), nil)
}
