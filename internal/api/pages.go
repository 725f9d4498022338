package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fragmede/hnflat/internal/thread"
)

// ErrNoItemID is returned when a discussion reference carries no item id.
var ErrNoItemID = errors.New("no item id")

// ParseItemID accepts a bare item id or any URL with an "id" query
// parameter, such as https://news.ycombinator.com/item?id=12345.
func ParseItemID(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		return id, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", ref, err)
	}
	id, err := strconv.Atoi(u.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q: %w", ref, ErrNoItemID)
	}
	return id, nil
}

// PageURL is the discussion page of an item on the website.
func (c *Client) PageURL(id int) string {
	return fmt.Sprintf("%s/item?id=%d", c.webURL, id)
}

// GetPages fetches the discussion page of an item, following the "More"
// link of long threads for at most the configured number of pages.
func (c *Client) GetPages(ctx context.Context, id int) ([]*goquery.Document, error) {
	var docs []*goquery.Document
	next := c.PageURL(id)

	for len(docs) < c.maxPages && next != "" {
		html, err := c.pageHTML(ctx, next)
		if err != nil {
			return nil, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", next, err)
		}
		docs = append(docs, doc)

		next = ""
		if more := thread.MoreLink(doc); more != "" {
			if next, err = c.resolve(more); err != nil {
				return nil, err
			}
		}
	}

	if next != "" {
		c.log.Warn("page limit reached, thread is truncated", "id", id, "pages", len(docs))
	}
	return docs, nil
}

func (c *Client) pageHTML(ctx context.Context, pageURL string) (string, error) {
	if c.pages != nil {
		html, fresh, err := c.pages.GetPage(pageURL, c.pageTTL)
		switch {
		case err != nil:
			c.log.Warn("reading page cache", "url", pageURL, "error", err)
		case html != "" && fresh:
			c.log.Debug("loaded page from cache", "url", pageURL, "bytes", len(html))
			return html, nil
		}
	}

	c.log.Debug("fetching page", "url", pageURL)
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if !bytes.Contains(body, []byte("<")) {
		return "", fmt.Errorf("%s did not return HTML", pageURL)
	}
	c.log.Debug("fetched page", "url", pageURL, "bytes", len(body))

	html := string(body)
	if c.pages != nil {
		if err := c.pages.PutPage(pageURL, html); err != nil {
			c.log.Warn("caching page", "url", pageURL, "error", err)
		}
	}
	return html, nil
}

func (c *Client) resolve(href string) (string, error) {
	base, err := url.Parse(c.webURL + "/")
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}
