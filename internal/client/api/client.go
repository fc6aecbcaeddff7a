// Package api is the typed REST client for the AccessHub backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// User mirrors the wire representation of a user record. The backend never
// serializes password hashes, so there is no field for one.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthPayload is the body of a successful login or registration.
type AuthPayload struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ProfileUpdate carries optional profile changes; empty fields are omitted.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// APIError is the single error type every transport or server failure
// normalizes into.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client issues HTTP requests against the backend API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// OnUnauthorized fires when the server answers 401 to a request that
	// carried a bearer token, letting the session layer treat it as an
	// implicit logout. Unauthenticated calls never fire it.
	OnUnauthorized func()
}

// New creates a client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	body := map[string]string{"email": email, "password": password}
	var payload AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, username, password string) (*AuthPayload, error) {
	body := map[string]string{"email": email, "username": username, "password": password}
	var payload AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Users lists all user records. Requires admin or super_admin.
func (c *Client) Users(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user by id. Requires super_admin.
func (c *Client) DeleteUser(ctx context.Context, id, token string) error {
	var resp struct {
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodDelete, "/api/users/"+id, token, nil, &resp)
}

// UpdateProfile updates the caller's own username and/or password.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", token, update, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", "", nil, &resp)
}

// do sends one request and decodes the response. Failures of any kind come
// back as *APIError with a human-readable message.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("build request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var serverErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&serverErr); err == nil && serverErr.Message != "" {
			apiErr.Message = serverErr.Message
		}
		// Only a rejected bearer token is a session event; a failed login or
		// registration carries no token and must not touch the live session.
		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}
