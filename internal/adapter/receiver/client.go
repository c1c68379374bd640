// Package receiver talks to the embedded web file server of a Trimble GNSS
// receiver.
package receiver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

// Client fetches listings and files from one receiver.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a client for baseURL (scheme and authority). A zero
// timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// BaseURL is the receiver's scheme and authority.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Links fetches the listing page at dirPath and returns the href of every
// anchor, in page order.
func (c *Client) Links(ctx context.Context, dirPath string) ([]string, error) {
	c.logger.Debug("fetching listing", "url", c.baseURL+dirPath)

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+dirPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read listing %s: %v", domain.ErrTransport, dirPath, err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links, nil
}

// Probe issues a HEAD request and returns the response headers. The body is
// never fetched.
func (c *Client) Probe(ctx context.Context, fullURL string) (http.Header, error) {
	resp, err := c.do(ctx, http.MethodHead, fullURL)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp.Header, nil
}

// Open starts a streaming GET. The caller must close the body. The returned
// length is the declared Content-Length, or -1 when unknown.
func (c *Client) Open(ctx context.Context, fullURL string) (io.ReadCloser, int64, error) {
	resp, err := c.do(ctx, http.MethodGet, fullURL)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *Client) do(ctx context.Context, method, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrConfiguration, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, fullURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s: status %d", domain.ErrTransport, method, fullURL, resp.StatusCode)
	}
	return resp, nil
}
