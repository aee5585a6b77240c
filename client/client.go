package client

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/flota/game/engine"
)

const resourcePath = "/servicios/partidas"

var (
	// ErrNotFound is matched by APIError for 404 responses
	ErrNotFound = errors.New("not found")
	// ErrBadRequest is matched by APIError for 400 responses
	ErrBadRequest = errors.New("bad request")
)

// APIError is a non-2xx response from the server
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// Client is a match manager bound to one server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMatch starts a match and returns its id
func (c *Client) CreateMatch(ctx context.Context, rows, columns, ships int) (int, error) {
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/%d/%d", resourcePath, rows, columns, ships))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return matchIDFromLocation(resp.Header.Get("Location"))
}

// DeleteMatch ends a match
func (c *Client) DeleteMatch(ctx context.Context, matchID int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", resourcePath, matchID))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Probe fires at a cell and returns the raw result code
func (c *Client) Probe(ctx context.Context, matchID, row, column int) (int, error) {
	body, err := c.text(ctx, http.MethodPut, fmt.Sprintf("%s/%d/casilla/%d,%d", resourcePath, matchID, row, column))
	if err != nil {
		return 0, err
	}

	code, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return 0, fmt.Errorf("parse probe result %q: %w", body, err)
	}
	return code, nil
}

// GetShip returns the position of one ship
func (c *Client) GetShip(ctx context.Context, matchID, shipID int) (engine.ShipDescriptor, error) {
	body, err := c.text(ctx, http.MethodGet, fmt.Sprintf("%s/%d/barco/%d", resourcePath, matchID, shipID))
	if err != nil {
		return engine.ShipDescriptor{}, err
	}
	return engine.ParseShipDescriptor(strings.TrimSpace(body))
}

// GetSolution returns every ship of a match in id order
func (c *Client) GetSolution(ctx context.Context, matchID int) ([]engine.ShipDescriptor, error) {
	body, err := c.text(ctx, http.MethodGet, fmt.Sprintf("%s/%d/solucion", resourcePath, matchID))
	if err != nil {
		return nil, err
	}

	var doc engine.SolutionDocument
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("parse solution: %w", err)
	}
	fleet, err := doc.Fleet()
	if err != nil {
		return nil, fmt.Errorf("parse solution: %w", err)
	}
	return fleet, nil
}

func (c *Client) text(ctx context.Context, method, p string) (string, error) {
	resp, err := c.do(ctx, method, p)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s %s: read body: %w", method, p, err)
	}
	return string(body), nil
}

// do sends a bodiless request and converts error statuses into APIError
func (c *Client) do(ctx context.Context, method, p string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, p, err)
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			Method:     method,
			Path:       p,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}

func matchIDFromLocation(location string) (int, error) {
	if location == "" {
		return 0, errors.New("create match: response has no Location header")
	}
	u, err := url.Parse(location)
	if err != nil {
		return 0, fmt.Errorf("create match: bad Location %q: %w", location, err)
	}
	id, err := strconv.Atoi(path.Base(u.Path))
	if err != nil {
		return 0, fmt.Errorf("create match: bad Location %q: %w", location, err)
	}
	return id, nil
}
