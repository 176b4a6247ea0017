package api

import (
	"context"
	"net/http"
)

// WorkHour is one work-hour record.
type WorkHour struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId"`
	ProjectID    int64   `json:"projectId"`
	TaskID       int64   `json:"taskId,omitempty"`
	WorkDate     string  `json:"workDate"`
	Hours        float64 `json:"hours"`
	Content      string  `json:"content"`
	Status       Flex    `json:"status"`
	CreateUserID int64   `json:"createUserId,omitempty"`
	UpdateUserID int64   `json:"updateUserId,omitempty"`
	CreateTime   string  `json:"createTime,omitempty"`
	UpdateTime   string  `json:"updateTime,omitempty"`
	UserName     string  `json:"userName,omitempty"`
	ProjectName  string  `json:"projectName,omitempty"`
	TaskName     string  `json:"taskName,omitempty"`
}

// WorkHourQuery is the body of POST /work-hours/query.
type WorkHourQuery struct {
	UserID    int64  `json:"userId,omitempty"`
	ProjectID int64  `json:"projectId,omitempty"`
	TaskID    int64  `json:"taskId,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Status    string `json:"status,omitempty"`
	PageQuery
}

// WorkHourRequest is the body of POST and PUT /work-hours. ID is ignored on
// create.
type WorkHourRequest struct {
	ID        int64   `json:"id,omitempty"`
	ProjectID int64   `json:"projectId"`
	TaskID    int64   `json:"taskId,omitempty"`
	WorkDate  string  `json:"workDate"`
	Hours     float64 `json:"hours"`
	Content   string  `json:"content"`
	Status    string  `json:"status,omitempty"`
}

// QueryWorkHours returns one page of work-hour records.
func (c *Client) QueryWorkHours(ctx context.Context, q WorkHourQuery) (*Page[WorkHour], error) {
	return fetchPage[WorkHour](ctx, c, send(http.MethodPost, "/work-hours/query", "/work-hours/query", q))
}

// GetWorkHour returns one record.
func (c *Client) GetWorkHour(ctx context.Context, id int64) (*WorkHour, error) {
	const route = "/work-hours/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var wh WorkHour
	if err := c.fetch(ctx, get(route, pathID("/work-hours", id), nil), &wh); err != nil {
		return nil, err
	}
	return &wh, nil
}

// CreateWorkHour records work.
func (c *Client) CreateWorkHour(ctx context.Context, req WorkHourRequest) error {
	req.ID = 0
	return c.fetch(ctx, send(http.MethodPost, "/work-hours", "/work-hours", req), nil)
}

// UpdateWorkHour updates a record.
func (c *Client) UpdateWorkHour(ctx context.Context, req WorkHourRequest) error {
	if err := requireID(http.MethodPut, "/work-hours", req.ID); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodPut, "/work-hours", "/work-hours", req), nil)
}

// DeleteWorkHour deletes a record.
func (c *Client) DeleteWorkHour(ctx context.Context, id int64) error {
	const route = "/work-hours/{id}"
	if err := requireID(http.MethodDelete, route, id); err != nil {
		return err
	}
	return c.fetch(ctx, send(http.MethodDelete, route, pathID("/work-hours", id), nil), nil)
}

// WorkHoursByUser returns every record of a user.
func (c *Client) WorkHoursByUser(ctx context.Context, userID int64) ([]WorkHour, error) {
	return c.workHoursBy(ctx, "user", userID)
}

// WorkHoursByProject returns every record booked on a project.
func (c *Client) WorkHoursByProject(ctx context.Context, projectID int64) ([]WorkHour, error) {
	return c.workHoursBy(ctx, "project", projectID)
}

func (c *Client) workHoursBy(ctx context.Context, owner string, id int64) ([]WorkHour, error) {
	route := "/work-hours/" + owner + "/{id}"
	if err := requireID(http.MethodGet, route, id); err != nil {
		return nil, err
	}
	var records []WorkHour
	if err := c.fetch(ctx, get(route, pathID("/work-hours/"+owner, id), nil), &records); err != nil {
		return nil, err
	}
	return records, nil
}
