package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/jotter/internal/item"
)

// ItemsFetcher defines the item operations served over HTTP.
// This interface is implemented by *Client and can be used for testing.
type ItemsFetcher interface {
	List(ctx context.Context) ([]item.Item, error)
	Get(ctx context.Context, id string) (item.Item, error)
	Create(ctx context.Context, in item.Input) (item.Item, error)
	Update(ctx context.Context, id string, patch item.Patch) (item.Item, error)
	Delete(ctx context.Context, id string) error
}

// Ensure Client implements ItemsFetcher at compile time.
var _ ItemsFetcher = (*Client)(nil)

// Client talks to the jotter HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:5000"
	defaultUserAgent = "jotter/0.1"
	requestTimeout   = 5 * time.Second
	maxErrorBody     = 4 << 10
)

// New builds a Client using the provided apiBind host:port value.
func New(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List retrieves every item, newest first.
func (c *Client) List(ctx context.Context) ([]item.Item, error) {
	var items []item.Item
	if err := c.do(ctx, "list", http.MethodGet, collectionURL(), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []item.Item{}
	}
	return items, nil
}

// Get retrieves a single item.
func (c *Client) Get(ctx context.Context, id string) (item.Item, error) {
	var it item.Item
	if err := c.do(ctx, "get", http.MethodGet, itemURL(id), nil, &it); err != nil {
		return item.Item{}, withID(err, id)
	}
	return it, nil
}

// Create posts a new item.
func (c *Client) Create(ctx context.Context, in item.Input) (item.Item, error) {
	var it item.Item
	if err := c.do(ctx, "create", http.MethodPost, collectionURL(), in, &it); err != nil {
		return item.Item{}, err
	}
	return it, nil
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	var it item.Item
	if err := c.do(ctx, "update", http.MethodPut, itemURL(id), patch, &it); err != nil {
		return item.Item{}, withID(err, id)
	}
	return it, nil
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id string) error {
	return withID(c.do(ctx, "delete", http.MethodDelete, itemURL(id), nil, nil), id)
}

func collectionURL() *url.URL {
	return &url.URL{Path: "/items"}
}

func itemURL(id string) *url.URL {
	return &url.URL{
		Path:    "/items/" + id,
		RawPath: "/items/" + url.PathEscape(id),
	}
}

func (c *Client) do(ctx context.Context, op, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return &TransportError{Op: op, Err: errors.New("client is nil")}
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(op, rel, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// statusError maps API status codes back onto the item error taxonomy.
func statusError(op string, rel *url.URL, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)
	msg := strings.TrimSpace(payload.Error)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if msg == "" {
			msg = "invalid request"
		}
		return &item.ValidationError{Reason: msg}
	case http.StatusNotFound:
		return &item.NotFoundError{}
	}
	err := fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	if msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return &TransportError{Op: op, Err: err}
}

// withID fills in the id of a NotFoundError produced by statusError.
func withID(err error, id string) error {
	var nf *item.NotFoundError
	if errors.As(err, &nf) && nf.ID == "" {
		nf.ID = id
	}
	return err
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
