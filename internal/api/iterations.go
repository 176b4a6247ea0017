package api

import (
	"context"
	"net/http"
)

// Iteration is a time-boxed slice of a project.
type Iteration struct {
	ID              int64  `json:"id"`
	ProjectID       int64  `json:"projectId"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Status          Flex   `json:"status"`
	PlanStartDate   string `json:"planStartDate,omitempty"`
	PlanEndDate     string `json:"planEndDate,omitempty"`
	ActualStartDate string `json:"actualStartDate,omitempty"`
	ActualEndDate   string `json:"actualEndDate,omitempty"`
	CreateUserID    int64  `json:"createUserId,omitempty"`
	CreateUserName  string `json:"createUserName,omitempty"`
	UpdateUserID    int64  `json:"updateUserId,omitempty"`
	UpdateUserName  string `json:"updateUserName,omitempty"`
	CreateTime      string `json:"createTime,omitempty"`
	UpdateTime      string `json:"updateTime,omitempty"`
}

// IterationQuery is the body of POST /iterations/query.
type IterationQuery struct {
	ProjectID int64  `json:"projectId,omitempty"`
	Status    string `json:"status,omitempty"`
	PageQuery
}

// IterationCreateRequest is the body of POST /iterations.
type IterationCreateRequest struct {
	ProjectID     int64  `json:"projectId"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status,omitempty"`
	PlanStartDate string `json:"planStartDate,omitempty"`
	PlanEndDate   string `json:"planEndDate,omitempty"`
}

// IterationUpdateRequest is the body of PUT /iterations.
type IterationUpdateRequest struct {
	ID              int64  `json:"id"`
	Name            string `json:"name,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status,omitempty"`
	PlanStartDate   string `json:"planStartDate,omitempty"`
	PlanEndDate     string `json:"planEndDate,omitempty"`
	ActualStartDate string `json:"actualStartDate,omitempty"`
	ActualEndDate   string `json:"actualEndDate,omitempty"`
}

// QueryIterations returns one page of iterations. The backend takes the
// filter as a POST body.
func (c *Client) QueryIterations(ctx context.Context, q IterationQuery) (*Page[Iteration], error) {
	return fetchPage[Iteration](ctx, c, send(http.MethodPost, "/iterations/query", "/iterations/query", q))
}

// GetIteration returns one iteration.
func (c *Client) GetIteration(ctx context.Context, id int64) (*Iteration, error) {
	const route = "/iterations/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var it Iteration
	if err := c.fetch(ctx, get(route, pathID("/iterations", id), nil), &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateIteration creates an iteration.
func (c *Client) CreateIteration(ctx context.Context, req IterationCreateRequest) error {
	return c.fetch(ctx, send(http.MethodPost, "/iterations", "/iterations", req), nil)
}

// UpdateIteration updates an iteration.
func (c *Client) UpdateIteration(ctx context.Context, req IterationUpdateRequest) error {
	if err := requireID(http.MethodPut, "/iterations", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/iterations", "/iterations", req), nil)
}

// DeleteIteration deletes an iteration.
func (c *Client) DeleteIteration(ctx context.Context, id int64) error {
	const route = "/iterations/{id}"
	if err := requireID(http.MethodDelete, route, id); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodDelete, route, pathID("/iterations", id), nil), nil)
}
