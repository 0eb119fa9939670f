package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-metatree/pkg/models"
)

// maxPages bounds nextLink following so a misbehaving server cannot loop.
const maxPages = 500

// RESTFetcher reads library items from a collection-query HTTP endpoint:
//
//	GET {base}/lists/{library}/items?$select=...&$expand=...
//
// Responses are JSON objects with a "value" array and an optional
// "@odata.nextLink" pointing at the next page.
type RESTFetcher struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logrus.Entry
}

// RESTOption configures a RESTFetcher.
type RESTOption func(*RESTFetcher)

// WithToken sends a bearer token on every request.
func WithToken(token string) RESTOption {
	return func(f *RESTFetcher) { f.token = token }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(f *RESTFetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Entry) RESTOption {
	return func(f *RESTFetcher) { f.logger = logger }
}

// NewRESTFetcher creates a fetcher for the API rooted at baseURL.
func NewRESTFetcher(baseURL string, opts ...RESTOption) *RESTFetcher {
	f := &RESTFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		f.logger = logrus.NewEntry(l)
	}
	f.logger = f.logger.WithField("component", "rest-fetcher")
	return f
}

type page struct {
	Value    []map[string]any `json:"value"`
	NextLink string           `json:"@odata.nextLink"`
}

// RequestURL returns the first-page URL for a query.
func (f *RESTFetcher) RequestURL(q Query) string {
	params := url.Values{}
	if len(q.Select) > 0 {
		params.Set("$select", strings.Join(q.Select, ","))
	}
	if len(q.Expand) > 0 {
		params.Set("$expand", strings.Join(q.Expand, ","))
	}
	u := fmt.Sprintf("%s/lists/%s/items", f.baseURL, url.PathEscape(q.Library))
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// FetchItems implements Fetcher. All pages are read before returning.
func (f *RESTFetcher) FetchItems(ctx context.Context, q Query) ([]*models.Item, error) {
	next := f.RequestURL(q)
	var items []*models.Item

	for n := 0; next != ""; n++ {
		if n >= maxPages {
			return nil, fmt.Errorf("library %s: more than %d pages", q.Library, maxPages)
		}
		p, err := f.get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", q.Library, err)
		}
		for i, row := range p.Value {
			item, err := DecodeRow(row)
			if err != nil {
				return nil, fmt.Errorf("library %s page %d row %d: %w", q.Library, n, i, err)
			}
			items = append(items, item)
		}
		next = p.NextLink
	}

	f.logger.WithFields(logrus.Fields{
		"library": q.Library,
		"items":   len(items),
	}).Debug("fetched items")
	return items, nil
}

func (f *RESTFetcher) get(ctx context.Context, u string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	f.logger.WithField("url", u).Debug("GET")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrLibraryNotFound
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &p, nil
}
