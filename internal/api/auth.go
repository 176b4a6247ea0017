package api

import (
	"context"
	"net/http"
)

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the logged-in user.
type LoginResponse struct {
	Token    string    `json:"token"`
	UserInfo *UserInfo `json:"userInfo,omitempty"`
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.fetch(ctx, send(http.MethodPost, "/users/login", "/users/login", req), &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &Error{Method: http.MethodPost, Route: "/users/login", Status: http.StatusOK, Code: CodeOK, Message: "login response carried no token", kind: KindDecode}
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.fetch(ctx, send(http.MethodPost, "/users/register", "/users/register", req), nil)
}

// CurrentUser returns the user the bearer token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*UserInfo, error) {
	var user UserInfo
	if err := c.fetch(ctx, get("/users/info", "/users/info", nil), &user); err != nil {
		return nil, err
	}
	return &user, nil
}
