// Package preview builds the filtered external view URL shown next to the
// tree for a grouping node.
package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-metatree/pkg/field"
	"github.com/mattsolo1/grove-metatree/pkg/models"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

// IDLookup translates a display value of a lookup column into the
// identifier the view filter expects.
type IDLookup interface {
	LookupID(column, value string) (string, bool)
}

// IDLookupFunc adapts a function to IDLookup.
type IDLookupFunc func(column, value string) (string, bool)

// LookupID implements IDLookup.
func (f IDLookupFunc) LookupID(column, value string) (string, bool) { return f(column, value) }

// URLBuilder turns a root-to-node path into a view URL carrying one
// FilterField/FilterValue pair per grouping ancestor.
type URLBuilder struct {
	BaseURL  string
	Library  string
	ViewPath string
	// LookupColumns are filtered by identifier; their values go through
	// Lookup and the pair is flagged with FilterLookupId.
	LookupColumns []string
	Lookup        IDLookup
}

// RootURL is the unfiltered library location.
func (b *URLBuilder) RootURL() string {
	return joinURL(b.BaseURL, b.Library)
}

// ViewURL is the unfiltered view page.
func (b *URLBuilder) ViewURL() string {
	if b.ViewPath == "" {
		return b.RootURL()
	}
	return joinURL(b.RootURL(), b.ViewPath)
}

// Build returns the filtered view URL for path. Nodes other than groups
// contribute no filter, so the path of the root yields ViewURL.
func (b *URLBuilder) Build(path []*tree.Node) string {
	var params []string
	n := 0
	for _, node := range path {
		if node == nil || node.Kind != tree.KindGroup {
			continue
		}
		n++
		col, value := node.Column(), node.Value()
		lookup := false
		if b.isLookup(col) && b.Lookup != nil {
			if id, ok := b.Lookup.LookupID(col, value); ok {
				value = id
				lookup = true
			}
		}
		idx := strconv.Itoa(n)
		params = append(params,
			"FilterField"+idx+"="+url.QueryEscape(col),
			"FilterValue"+idx+"="+url.QueryEscape(value),
		)
		if lookup {
			params = append(params, "FilterLookupId"+idx+"=1")
		}
	}
	if len(params) == 0 {
		return b.ViewURL()
	}
	return b.ViewURL() + "?" + strings.Join(params, "&")
}

func (b *URLBuilder) isLookup(column string) bool {
	for _, c := range b.LookupColumns {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}

func joinURL(base, elem string) string {
	if elem == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(elem, "/")
}

// ItemIDLookup resolves lookup identifiers from already fetched items: the
// first item whose column resolves to value supplies the identifier, read
// from the derived "<column>Id" field or the "Id" of the lookup object.
func ItemIDLookup(items []*models.Item) IDLookup {
	return IDLookupFunc(func(column, value string) (string, bool) {
		for _, it := range items {
			if field.Resolve(it, column) != value {
				continue
			}
			if raw, ok := it.Fields[column+"Id"]; ok {
				if id := field.FormatScalar(raw); id != "" {
					return id, true
				}
			}
			if obj, ok := it.Fields[column].(map[string]any); ok {
				for _, k := range []string{"Id", "ID", "LookupId"} {
					if id := field.FormatScalar(obj[k]); id != "" {
						return id, true
					}
				}
			}
		}
		return "", false
	})
}

// Prober checks whether a URL exists. Implementations treat every failure
// as "does not exist".
type Prober interface {
	Exists(ctx context.Context, rawURL string) bool
}

// HTTPProber probes with a HEAD request.
type HTTPProber struct {
	client *http.Client
	logger *logrus.Entry
}

// NewHTTPProber creates a prober. A nil client uses a short-timeout default.
func NewHTTPProber(client *http.Client, logger *logrus.Entry) *HTTPProber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &HTTPProber{client: client, logger: logger.WithField("component", "preview-probe")}
}

// Exists implements Prober.
func (p *HTTPProber) Exists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WithError(err).WithField("url", rawURL).Debug("probe failed")
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}

// Result is a resolved preview location.
type Result struct {
	URL string
	// Fallback is set when the filtered view did not exist and URL points
	// at the library root.
	Fallback bool
}

// Resolver combines URL construction with the existence probe.
type Resolver struct {
	Builder *URLBuilder
	// Prober is optional; without it the filtered URL is returned as is.
	Prober Prober
}

// Resolve returns the preview URL for path.
func (r *Resolver) Resolve(ctx context.Context, path []*tree.Node) (Result, error) {
	if r.Builder == nil {
		return Result{}, fmt.Errorf("no preview builder configured")
	}
	u := r.Builder.Build(path)
	if r.Prober == nil || r.Prober.Exists(ctx, r.Builder.ViewURL()) {
		return Result{URL: u}, nil
	}
	return Result{URL: r.Builder.RootURL(), Fallback: true}, nil
}

// Row is one line of the listing shown when the view cannot be embedded.
type Row struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	FileRef  string `json:"fileRef"`
	FileName string `json:"fileName"`
}

// Rows lists the documents among items.
func Rows(items []*models.Item) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if !it.IsDocument() {
			continue
		}
		name := it.FileLeafRef
		if name == "" {
			name = it.FileRef
		}
		rows = append(rows, Row{ID: it.ID, Title: it.Title, FileRef: it.FileRef, FileName: name})
	}
	return rows
}
