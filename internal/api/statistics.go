package api

import (
	"context"
	"net/http"
)

// DashboardProject is a project summary on the dashboard.
type DashboardProject struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Status Flex   `json:"status"`
}

// DashboardTask is a pending task on the dashboard.
type DashboardTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Status      Flex   `json:"status"`
	Priority    Flex   `json:"priority"`
	ProjectID   int64  `json:"projectId"`
	PlanEndDate string `json:"planEndDate,omitempty"`
}

// Dashboard is the landing page summary of the current user.
type Dashboard struct {
	ProjectCount     int                `json:"projectCount"`
	Projects         []DashboardProject `json:"projects"`
	PendingTaskCount int                `json:"pendingTaskCount"`
	PendingTasks     []DashboardTask    `json:"pendingTasks"`
	TodayHours       float64            `json:"todayHours"`
	WeekHours        float64            `json:"weekHours"`
	MonthHours       float64            `json:"monthHours"`
	TotalHours       float64            `json:"totalHours"`
}

// ProjectWorkHourStats aggregates work hours booked on a project.
type ProjectWorkHourStats struct {
	ProjectID             int64             `json:"projectId"`
	TotalHours            float64           `json:"totalHours"`
	TotalRecords          int               `json:"totalRecords"`
	UserCount             int               `json:"userCount"`
	UserHoursDistribution map[int64]float64 `json:"userHoursDistribution,omitempty"`
	StartDate             string            `json:"startDate,omitempty"`
	EndDate               string            `json:"endDate,omitempty"`
}

// UserWorkHourStats aggregates work hours of a user.
type UserWorkHourStats struct {
	UserID                   int64             `json:"userId"`
	TotalHours               float64           `json:"totalHours"`
	TotalRecords             int               `json:"totalRecords"`
	ProjectCount             int               `json:"projectCount"`
	ProjectHoursDistribution map[int64]float64 `json:"projectHoursDistribution,omitempty"`
	StartDate                string            `json:"startDate,omitempty"`
	EndDate                  string            `json:"endDate,omitempty"`
}

// DepartmentWorkHourStats aggregates work hours of a department.
type DepartmentWorkHourStats struct {
	DepartmentID          int64             `json:"departmentId"`
	TotalHours            float64           `json:"totalHours"`
	TotalRecords          int               `json:"totalRecords"`
	UserCount             int               `json:"userCount"`
	UserHoursDistribution map[int64]float64 `json:"userHoursDistribution,omitempty"`
	StartDate             string            `json:"startDate,omitempty"`
	EndDate               string            `json:"endDate,omitempty"`
}

// TaskWorkHourStats compares booked hours against the estimate.
type TaskWorkHourStats struct {
	TaskID        int64   `json:"taskId"`
	TotalHours    float64 `json:"totalHours"`
	EstimateHours float64 `json:"estimateHours"`
	Variance      float64 `json:"variance"`
	TotalRecords  int     `json:"totalRecords"`
}

// ProjectCompletion counts a project's tasks by state.
type ProjectCompletion struct {
	ProjectID       int64  `json:"projectId"`
	TotalTasks      int    `json:"totalTasks"`
	TodoTasks       int    `json:"todoTasks"`
	InProgressTasks int    `json:"inProgressTasks"`
	DoneTasks       int    `json:"doneTasks"`
	CompletionRate  string `json:"completionRate"`
}

// TrendPoint is the hours booked on one day.
type TrendPoint struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// WorkHourTrend is a daily series of booked hours.
type WorkHourTrend struct {
	ProjectID  int64        `json:"projectId,omitempty"`
	UserID     int64        `json:"userId,omitempty"`
	StartDate  string       `json:"startDate"`
	EndDate    string       `json:"endDate"`
	TotalHours float64      `json:"totalHours"`
	TrendData  []TrendPoint `json:"trendData"`
}

// TrendQuery filters GET /statistics/trend. The date range is required.
type TrendQuery struct {
	ProjectID int64  `url:"projectId,omitempty"`
	UserID    int64  `url:"userId,omitempty"`
	StartDate string `url:"startDate"`
	EndDate   string `url:"endDate"`
}

// Dashboard returns the landing page summary.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.fetch(ctx, get("/statistics/dashboard", "/statistics/dashboard", nil), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ProjectWorkHours returns work-hour statistics for a project.
func (c *Client) ProjectWorkHours(ctx context.Context, projectID int64, r DateRange) (*ProjectWorkHourStats, error) {
	const route = "/statistics/project/{id}"
	if err := requireID(http.MethodGet, route, projectID); err != nil {
		return nil, err
	}
	var s ProjectWorkHourStats
	if err := c.fetch(ctx, get(route, pathID("/statistics/project", projectID), r), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UserWorkHours returns work-hour statistics for a user.
func (c *Client) UserWorkHours(ctx context.Context, userID int64, r DateRange) (*UserWorkHourStats, error) {
	const route = "/statistics/user/{id}"
	if err := requireID(http.MethodGet, route, userID); err != nil {
		return nil, err
	}
	var s UserWorkHourStats
	if err := c.fetch(ctx, get(route, pathID("/statistics/user", userID), r), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DepartmentWorkHours returns work-hour statistics for a department.
func (c *Client) DepartmentWorkHours(ctx context.Context, departmentID int64, r DateRange) (*DepartmentWorkHourStats, error) {
	const route = "/statistics/department/{id}"
	if err := requireID(http.MethodGet, route, departmentID); err != nil {
		return nil, err
	}
	var s DepartmentWorkHourStats
	if err := c.fetch(ctx, get(route, pathID("/statistics/department", departmentID), r), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TaskWorkHours returns booked versus estimated hours for a task.
func (c *Client) TaskWorkHours(ctx context.Context, taskID int64) (*TaskWorkHourStats, error) {
	const route = "/statistics/task/{id}"
	if err := requireID(http.MethodGet, route, taskID); err != nil {
		return nil, err
	}
	var s TaskWorkHourStats
	if err := c.fetch(ctx, get(route, pathID("/statistics/task", taskID), nil), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ProjectCompletion returns task completion counts for a project.
func (c *Client) ProjectCompletion(ctx context.Context, projectID int64) (*ProjectCompletion, error) {
	const route = "/statistics/project/{id}/completion"
	if err := requireID(http.MethodGet, route, projectID); err != nil {
		return nil, err
	}
	var s ProjectCompletion
	if err := c.fetch(ctx, get(route, pathID("/statistics/project", projectID, "completion"), nil), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// WorkHourTrend returns the daily series for a user or project.
func (c *Client) WorkHourTrend(ctx context.Context, q TrendQuery) (*WorkHourTrend, error) {
	var t WorkHourTrend
	if err := c.fetch(ctx, get("/statistics/trend", "/statistics/trend", q), &t); err != nil {
		return nil, err
	}
	return &t, nil
}
