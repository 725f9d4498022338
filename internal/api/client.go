package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fragmede/hnflat/internal/config"
)

const (
	defaultAPIURL = "https://hacker-news.firebaseio.com/v0"
	defaultWebURL = "https://news.ycombinator.com"
)

// ErrNotFound is returned when HN has no such item.
var ErrNotFound = errors.New("item not found")

// ItemCache stores API items between runs.
type ItemCache interface {
	GetItem(id int, ttl time.Duration) (*Item, bool, error)
	PutItem(item *Item) error
}

// PageCache stores discussion page HTML between runs.
type PageCache interface {
	GetPage(url string, ttl time.Duration) (string, bool, error)
	PutPage(url, html string) error
}

// Client is the HN client, for both the JSON API and the website.
type Client struct {
	http      *http.Client
	apiURL    string
	webURL    string
	userAgent string

	maxConcurrent int
	maxPages      int

	items   ItemCache
	itemTTL time.Duration
	pages   PageCache
	pageTTL time.Duration

	log *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithAPIURL overrides the JSON API base URL.
func WithAPIURL(u string) Option { return func(c *Client) { c.apiURL = u } }

// WithWebURL overrides the website base URL.
func WithWebURL(u string) Option { return func(c *Client) { c.webURL = u } }

// WithItemCache makes GetItem consult and fill cache.
func WithItemCache(cache ItemCache) Option { return func(c *Client) { c.items = cache } }

// WithPageCache makes GetPages consult and fill cache.
func WithPageCache(cache PageCache) Option { return func(c *Client) { c.pages = cache } }

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// NewClient creates a new HN client.
func NewClient(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		apiURL:        defaultAPIURL,
		webURL:        defaultWebURL,
		userAgent:     cfg.UserAgent,
		maxConcurrent: max(1, cfg.MaxConcurrent),
		maxPages:      max(1, cfg.MaxPages),
		itemTTL:       cfg.ItemTTL,
		pageTTL:       cfg.PageTTL,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetch GETs a URL and returns the body of a 200 response.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetching %s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}

// get fetches a URL and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, url string, dst any) error {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// GetItem fetches a single item by ID.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	if c.items != nil {
		if item, fresh, err := c.items.GetItem(id, c.itemTTL); err == nil && item != nil && fresh {
			return item, nil
		}
	}

	url := fmt.Sprintf("%s/item/%d.json", c.apiURL, id)
	var item *Item
	if err := c.get(ctx, url, &item); err != nil {
		return nil, err
	}
	// The API answers unknown ids with a JSON null.
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	if c.items != nil {
		if err := c.items.PutItem(item); err != nil {
			c.log.Warn("caching item", "id", id, "error", err)
		}
	}
	return item, nil
}

// BatchGetItems fetches multiple items concurrently with a concurrency limit.
// Returns items in the same order as the input IDs. Failed fetches are nil.
func (c *Client) BatchGetItems(ctx context.Context, ids []int) ([]*Item, error) {
	results := make([]*Item, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, id := range ids {
		g.Go(func() error {
			item, err := c.GetItem(gctx, id)
			if err != nil {
				// Non-fatal: individual items can fail.
				c.log.Debug("item fetch failed", "id", id, "error", err)
				return nil
			}
			mu.Lock()
			results[i] = item
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
