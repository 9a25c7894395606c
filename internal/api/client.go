// Package api is the HTTP client for the job tracker REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyjobs/internal/model"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "http://localhost:5000/api"

const requestTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL. A nil token source sends unauthenticated
// requests, which is what the login and register calls need.
func New(baseURL string, source oauth2.TokenSource) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := &http.Client{Timeout: requestTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &Client{baseURL: baseURL, http: oauth2.NewClient(ctx, source)}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token *oauth2.Token) *Client {
	if token == nil {
		return New(c.baseURL, nil)
	}
	return New(c.baseURL, oauth2.StaticTokenSource(token))
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type envelope struct {
	Success      bool              `json:"success"`
	Error        string            `json:"error"`
	Message      string            `json:"message"`
	Valid        bool              `json:"valid"`
	AccessToken  string            `json:"access_token"`
	User         *model.User       `json:"user"`
	Application  *applicationJSON  `json:"application"`
	Applications []applicationJSON `json:"applications"`
	Stats        *model.Stats      `json:"stats"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		message := env.Error
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return envelope{}, &Error{Status: resp.StatusCode, Message: message, Cause: decodeErr}
	}
	if decodeErr != nil {
		return envelope{}, fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if !env.Success {
		return envelope{}, &Error{Status: resp.StatusCode, Message: env.Error}
	}
	return env, nil
}

// Health reports whether the API answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	env, err := c.do(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return model.Stats{}, err
	}
	if env.Stats == nil {
		return model.Stats{ByStatus: map[string]int{}}, nil
	}
	if env.Stats.ByStatus == nil {
		env.Stats.ByStatus = map[string]int{}
	}
	return *env.Stats, nil
}
