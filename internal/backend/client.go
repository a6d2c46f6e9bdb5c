package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/festivaz/web-gateway/internal/domain"
)

// TransportError means no HTTP response was received (status 0).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.Status)
}

// Message extracts a human readable message from the response body: a JSON
// string, the message field of a JSON object, or plain text.
func (e *HTTPError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}
	var decoded any
	if err := json.Unmarshal(e.Body, &decoded); err != nil {
		return string(e.Body)
	}
	switch v := decoded.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// Title returns the title field of a JSON problem-details body.
func (e *HTTPError) Title() string {
	var problem struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(e.Body, &problem); err != nil {
		return ""
	}
	return problem.Title
}

// Client calls the marketplace account API.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient builds a client for baseURL (e.g. http://host/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, timeout: timeout}
}

// Login posts credentials to /account/login and returns the user record,
// which normally carries the session token.
func (c *Client) Login(ctx context.Context, creds domain.LoginCredentials) (domain.CachedUser, error) {
	return c.postUser(ctx, "/account/login", creds)
}

// RegisterCustomer posts to /account/registercustomer.
func (c *Client) RegisterCustomer(ctx context.Context, reg domain.CustomerRegistration) (domain.CachedUser, error) {
	return c.postUser(ctx, "/account/registercustomer", reg)
}

// RegisterServiceProvider posts to /account/registerserviceprovider. The
// response body is not used.
func (c *Client) RegisterServiceProvider(ctx context.Context, reg domain.ServiceProviderRegistration) error {
	_, err := c.post(ctx, "/account/registerserviceprovider", reg)
	return err
}

// GoogleLogin exchanges a Google id token at /account/google-login.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (domain.CachedUser, error) {
	return c.postUser(ctx, "/account/google-login", fiber.Map{"idToken": idToken})
}

func (c *Client) postUser(ctx context.Context, path string, body any) (domain.CachedUser, error) {
	raw, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var user domain.CachedUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return user, nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TransportError{Err: context.DeadlineExceeded}
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.baseURL + path)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.JSON(body)
	agent.Timeout(timeout)

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, &TransportError{Err: errors.Join(errs...)}
	}
	if status < 200 || status >= 300 {
		return nil, &HTTPError{Status: status, Body: respBody}
	}
	return respBody, nil
}
