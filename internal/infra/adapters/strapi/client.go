// File: internal/infra/adapters/strapi/client.go
package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/config"
	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/infra/metrics"
)

var _ adapter.BackendGateway = (*Client)(nil)

// Error is returned by every failed call. It matches
// domain.ErrBackendUnavailable, and domain.ErrNotFound on a 404.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("strapi %s: http %d", e.Op, e.Status)
	}
	return fmt.Sprintf("strapi %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case domain.ErrBackendUnavailable:
		return true
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Client is the CMS REST gateway. It performs no retries.
type Client struct {
	baseURL      string
	mediaBaseURL string
	token        string
	timeout      time.Duration
	http         *http.Client
	log          zerolog.Logger
	now          func() time.Time
}

func NewClient(cfg config.BackendConfig, logger *zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("strapi: base url empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("strapi: invalid base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	media := cfg.MediaBaseURL
	if media == "" {
		media = cfg.BaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		mediaBaseURL: strings.TrimRight(media, "/"),
		token:        cfg.APIToken,
		timeout:      timeout,
		http:         &http.Client{},
		log:          logger.With().Str("component", "strapi").Logger(),
		now:          time.Now,
	}, nil
}

// MediaBaseURL is the prefix for relative upload urls.
func (c *Client) MediaBaseURL() string { return c.mediaBaseURL }

// do runs one API call under the fixed timeout. 200, 201 and 204 succeed; a
// 204 yields a nil payload.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	start := time.Now()
	raw, err := c.roundTrip(ctx, op, method, path, body)
	metrics.ObserveBackendCall(op, err == nil, time.Since(start))
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Str("method", method).Str("path", path).Msg("backend call failed")
	}
	return raw, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Op: op, Err: err}
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, rd)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNoContent:
		return nil, nil
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{Op: op, Status: resp.StatusCode, Err: errors.New(string(bytes.TrimSpace(snippet)))}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	return b, nil
}

func entityPath(collection string, id model.EntityID) string {
	return "/" + collection + "/" + url.PathEscape(id.String())
}

// -----------------------------
// Users
// -----------------------------

func (c *Client) ListUsers(ctx context.Context, limit int, newestFirst bool) ([]*model.ManagedUser, error) {
	q := url.Values{}
	q.Set("pagination[limit]", strconv.Itoa(limit))
	if newestFirst {
		q.Set("sort", "createdAt:desc")
	} else {
		q.Set("sort", "createdAt:asc")
	}
	raw, err := c.do(ctx, "list_users", http.MethodGet, "/users?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(raw)
	if err != nil {
		return nil, &Error{Op: "list_users", Err: err}
	}
	users := make([]*model.ManagedUser, 0, len(items))
	for _, it := range items {
		u, err := decodeUser(it)
		if err != nil {
			c.log.Warn().Err(err).Msg("skipping undecodable user")
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id model.EntityID) (*model.ManagedUser, error) {
	raw, err := c.do(ctx, "get_user", http.MethodGet, entityPath("users", id), nil)
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(raw)
	if err != nil {
		return nil, &Error{Op: "get_user", Err: err}
	}
	return u, nil
}

func (c *Client) SetUserBlocked(ctx context.Context, id model.EntityID, blocked bool) error {
	_, err := c.do(ctx, "set_user_blocked", http.MethodPut, entityPath("users", id), map[string]any{"blocked": blocked})
	return err
}

// IncrementWarning reads the counter and writes count+1. Two concurrent calls
// can both read the same value and lose one increment.
func (c *Client) IncrementWarning(ctx context.Context, id model.EntityID) (int, error) {
	u, err := c.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}
	next := u.Warnings + 1
	if _, err := c.do(ctx, "increment_warning", http.MethodPut, entityPath("users", id), map[string]any{"warnings": next}); err != nil {
		return 0, err
	}
	return next, nil
}

func (c *Client) ResetWarnings(ctx context.Context, id model.EntityID) error {
	_, err := c.do(ctx, "reset_warnings", http.MethodPut, entityPath("users", id), map[string]any{"warnings": 0})
	return err
}

func (c *Client) DeleteUser(ctx context.Context, id model.EntityID) error {
	_, err := c.do(ctx, "delete_user", http.MethodDelete, entityPath("users", id), nil)
	return err
}

// -----------------------------
// Products
// -----------------------------

func (c *Client) GetProduct(ctx context.Context, id model.EntityID) (*model.Product, error) {
	raw, err := c.do(ctx, "get_product", http.MethodGet, entityPath("products", id)+"?populate=*", nil)
	if err != nil {
		return nil, err
	}
	p, err := ParseProduct(raw, c.mediaBaseURL)
	if err != nil {
		return nil, &Error{Op: "get_product", Err: err}
	}
	return p, nil
}

func (c *Client) PublishProduct(ctx context.Context, id model.EntityID) error {
	body := map[string]any{"data": map[string]any{
		"status":      "published",
		"publishedAt": c.now().UTC().Format(time.RFC3339),
	}}
	_, err := c.do(ctx, "publish_product", http.MethodPut, entityPath("products", id), body)
	return err
}

// DeleteProduct is how a product is rejected. It is irreversible.
func (c *Client) DeleteProduct(ctx context.Context, id model.EntityID) error {
	_, err := c.do(ctx, "delete_product", http.MethodDelete, entityPath("products", id), nil)
	return err
}

// ListPendingProducts returns drafts, newest first.
func (c *Client) ListPendingProducts(ctx context.Context, limit int) ([]*model.Product, error) {
	q := url.Values{}
	q.Set("pagination[limit]", strconv.Itoa(limit))
	q.Set("sort", "createdAt:desc")
	q.Set("publicationState", "preview")
	q.Set("filters[publishedAt][$null]", "true")
	q.Set("populate", "*")
	raw, err := c.do(ctx, "list_pending_products", http.MethodGet, "/products?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(raw)
	if err != nil {
		return nil, &Error{Op: "list_pending_products", Err: err}
	}
	out := make([]*model.Product, 0, len(items))
	for _, it := range items {
		p, err := ParseProduct(it, c.mediaBaseURL)
		if err != nil {
			c.log.Warn().Err(err).Msg("skipping undecodable product")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
