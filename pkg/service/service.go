// Package service drives one tree instance: it loads the configuration for
// a page, fetches (or restores) the item collection and applies expansion,
// selection and preview events to the current tree.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-metatree/pkg/cache"
	"github.com/mattsolo1/grove-metatree/pkg/config"
	"github.com/mattsolo1/grove-metatree/pkg/field"
	"github.com/mattsolo1/grove-metatree/pkg/i18n"
	"github.com/mattsolo1/grove-metatree/pkg/models"
	"github.com/mattsolo1/grove-metatree/pkg/preview"
	"github.com/mattsolo1/grove-metatree/pkg/source"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

// ErrNoLibrary is returned by operations that need a loaded tree when the
// page has no usable configuration.
var ErrNoLibrary = errors.New("no library configured")

// FetchError wraps a failed item fetch.
type FetchError struct {
	Library string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch items from %s: %v", e.Library, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Origin tells where the current collection came from.
type Origin string

const (
	OriginNone     Origin = ""
	OriginFetch    Origin = "fetch"
	OriginCache    Origin = "cache"
	OriginSnapshot Origin = "snapshot"
)

// PreviewConfig configures preview URLs.
type PreviewConfig struct {
	BaseURL       string
	ViewPath      string
	LookupColumns []string
	// Prober is optional; nil skips the existence check.
	Prober preview.Prober
}

// Options holds the collaborators of a Session.
type Options struct {
	PageKey string
	Fetcher source.Fetcher
	Configs config.Store
	// Cache is optional.
	Cache cache.Store
	// SourceID names the backend behind Fetcher so that two sources serving
	// a library of the same name keep separate cache entries.
	SourceID string
	Bundle  *i18n.Bundle
	Logger  *logrus.Entry
	Opener  Opener
	Preview PreviewConfig
	// DocumentURL derives the URL handed to the Opener. Nil uses FileRef.
	DocumentURL func(*models.Item) string
}

// State is a snapshot of what the surface should render.
type State struct {
	Root       *tree.Node
	Record     *config.Record
	Loading    bool
	Message    string
	Err        error
	Origin     Origin
	Generation uint64
}

// Session serializes the events of one tree instance. Fetches run outside
// the lock and are tagged with the generation current when they were
// issued; a result for an older generation is dropped.
type Session struct {
	opts   Options
	logger *logrus.Entry
	bundle *i18n.Bundle

	mu      sync.Mutex
	gen     uint64
	record  *config.Record
	engine  *tree.Engine
	loading bool
	message string
	err     error
	origin  Origin
}

// New creates a session. Fetcher and Configs are required.
func New(opts Options) (*Session, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("a fetcher is required")
	}
	if opts.Configs == nil {
		return nil, fmt.Errorf("a configuration store is required")
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	bundle := opts.Bundle
	if bundle == nil {
		bundle = i18n.MustNew("en")
	}
	return &Session{
		opts:   opts,
		logger: logger.WithFields(logrus.Fields{"component": "session", "page": opts.PageKey}),
		bundle: bundle,
	}, nil
}

// Bundle returns the string bundle in use.
func (s *Session) Bundle() *i18n.Bundle { return s.bundle }

// State returns the current render state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Record:     s.record,
		Loading:    s.loading,
		Message:    s.message,
		Err:        s.err,
		Origin:     s.origin,
		Generation: s.gen,
	}
	if s.engine != nil {
		st.Root = s.engine.Root()
	}
	return st
}

// Mount loads the page's configuration and the tree. A missing or
// incomplete configuration is not an error: the state carries the "select a
// library" message and no tree.
func (s *Session) Mount(ctx context.Context) error {
	if err := s.LoadConfig(ctx); err != nil {
		return err
	}
	_, err := s.Reload(ctx)
	return err
}

// LoadConfig reads the page's configuration record without loading items.
func (s *Session) LoadConfig(ctx context.Context) error {
	rec, err := s.opts.Configs.LoadByPageKey(ctx, s.opts.PageKey)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return fmt.Errorf("load config: %w", err)
	}

	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()
	return nil
}

// Configure validates and saves a new configuration for the page, then
// reloads the tree.
func (s *Session) Configure(ctx context.Context, rec *config.Record) error {
	rec.PageKey = s.opts.PageKey
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s.mu.Lock()
	prev := s.record
	s.mu.Unlock()

	// A snapshot survives only while it still matches the configuration.
	rec.PublishedSnapshot = ""
	if prev != nil && prev.Library == rec.Library && slices.Equal(prev.GroupingColumns(), rec.GroupingColumns()) {
		rec.PublishedSnapshot = prev.PublishedSnapshot
	}

	if err := s.opts.Configs.Save(ctx, rec); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	s.mu.Lock()
	s.record = rec
	s.mu.Unlock()

	_, err := s.Reload(ctx)
	return err
}

// Ticket identifies one issued fetch.
type Ticket struct {
	Generation uint64
	Record     *config.Record
}

// Result is the outcome of a fetch for a ticket.
type Result struct {
	Ticket Ticket
	Items  []*models.Item
	Origin Origin
	Err    error
}

// Begin starts a new generation for the current configuration and marks the
// session as loading. ok is false when no library is selected; the state
// then carries the "select a library" message. A library without grouping
// columns is loaded and shows its documents directly under the root.
func (s *Session) Begin() (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.err = nil
	if s.record == nil || s.record.Library == "" {
		s.engine = nil
		s.loading = false
		s.origin = OriginNone
		s.message = s.bundle.T("select_library_first")
		return Ticket{Generation: s.gen}, false
	}
	s.loading = true
	s.message = s.bundle.T("loading")
	return Ticket{Generation: s.gen, Record: s.record}, true
}

// Load produces the collection for a ticket: from the published snapshot
// when one is present and parseable, else from the cache when its column set
// matches, else from the fetcher. It does not touch session state and is
// safe to run concurrently with other events.
func (s *Session) Load(ctx context.Context, t Ticket) Result {
	rec := t.Record
	res := Result{Ticket: t}
	if rec == nil {
		res.Err = ErrNoLibrary
		return res
	}
	log := s.logger.WithFields(logrus.Fields{"library": rec.Library, "generation": t.Generation})

	columns := rec.GroupingColumns()
	selects, expands := field.Projection(columns, rec.Kinds())
	query := source.Query{Library: rec.Library, Select: selects, Expand: expands}

	if rec.PublishedSnapshot != "" {
		items, err := loadSnapshot(ctx, rec.PublishedSnapshot, query)
		if err == nil {
			log.Debug("using published snapshot")
			res.Items, res.Origin = items, OriginSnapshot
			return res
		}
		log.WithError(err).Warn("ignoring unreadable snapshot")
	}

	key := s.cacheKey(rec)
	if s.opts.Cache != nil {
		entry, err := s.opts.Cache.Get(ctx, key)
		switch {
		case err == nil && cache.IsValid(entry.Columns, columns):
			log.Debug("cache hit")
			res.Items, res.Origin = entry.Items, OriginCache
			return res
		case err == nil:
			log.Debug("cache entry has different columns")
		case !errors.Is(err, cache.ErrMiss):
			log.WithError(err).Warn("cache read failed")
		}
	}

	items, err := s.opts.Fetcher.FetchItems(ctx, query)
	if err != nil {
		res.Err = &FetchError{Library: rec.Library, Err: err}
		return res
	}
	res.Items, res.Origin = items, OriginFetch

	if s.opts.Cache != nil {
		entry := &cache.Entry{Columns: columns, Items: items, FetchedAt: time.Now()}
		if err := s.opts.Cache.Put(ctx, key, entry); err != nil {
			log.WithError(err).Warn("cache write failed")
		}
	}
	return res
}

func loadSnapshot(ctx context.Context, snapshot string, q source.Query) ([]*models.Item, error) {
	f, err := source.NewSnapshotFetcher(snapshot)
	if err != nil {
		return nil, err
	}
	return f.FetchItems(ctx, q)
}

func (s *Session) cacheKey(rec *config.Record) string {
	return cache.Key(s.opts.SourceID, rec.PageKey, rec.Library)
}

// Apply installs a result. It returns false, leaving the state untouched,
// when the result belongs to a superseded generation.
func (s *Session) Apply(r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Ticket.Generation != s.gen {
		s.logger.WithFields(logrus.Fields{
			"stale":   r.Ticket.Generation,
			"current": s.gen,
		}).Debug("discarding stale fetch result")
		return false
	}
	s.loading = false

	if r.Err != nil {
		s.logger.WithError(r.Err).Error("failed to load items")
		s.engine = nil
		s.origin = OriginNone
		s.err = r.Err
		s.message = s.bundle.T("error_loading_items", r.Err.Error())
		return true
	}

	rec := r.Ticket.Record
	g := tree.NewGrouper(rec.GroupingColumns(), s.grouperOptions()...)
	s.engine = tree.NewEngine(g, r.Items, rec.Title(), rec.Library)
	s.origin = r.Origin
	s.err = nil
	s.message = ""
	if len(s.engine.Root().Children) == 0 {
		s.message = s.bundle.T("no_documents")
	}
	return true
}

func (s *Session) grouperOptions() []tree.Option {
	opts := []tree.Option{tree.WithLabelFormatter(s.label)}
	if s.opts.DocumentURL != nil {
		opts = append(opts, tree.WithDocumentURL(s.opts.DocumentURL))
	}
	return opts
}

// label shows boolean values in the session language.
func (s *Session) label(column, value string) string {
	switch value {
	case "true":
		return s.bundle.T("value_true")
	case "false":
		return s.bundle.T("value_false")
	}
	return tree.DefaultLabel(column, value)
}

// Reload runs Begin, Load and Apply in sequence. The returned error is the
// fetch error, if the result was applied.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	t, ok := s.Begin()
	if !ok {
		return false, nil
	}
	r := s.Load(ctx, t)
	if !s.Apply(r) {
		return false, nil
	}
	return true, r.Err
}

// Expand toggles the node and materializes its children on first
// expansion.
func (s *Session) Expand(ctx context.Context, key string) (*tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, ErrNoLibrary
	}
	return s.engine.Expand(ctx, key)
}

// ExpandAll materializes and expands the whole tree.
func (s *Session) ExpandAll(ctx context.Context) (*tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, ErrNoLibrary
	}
	return s.engine.ExpandAll(ctx)
}

// Items returns the collection of the current generation.
func (s *Session) Items() []*models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	return s.engine.Items()
}

// Selection is the outcome of selecting a node.
type Selection struct {
	Node *tree.Node
	// DocumentURL is set for documents.
	DocumentURL string
	// Preview is set for groups and the root.
	Preview *Preview
}

// Preview is the preview panel content for a folder node.
type Preview struct {
	preview.Result
	Path []*tree.Node
	Rows []preview.Row
}

// Select handles a click on key. Documents are handed to the Opener;
// folders resolve their preview.
func (s *Session) Select(ctx context.Context, key string) (*Selection, error) {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return nil, ErrNoLibrary
	}
	node, ok := tree.FindByKey(s.engine.Root(), key)
	url, isDoc := s.engine.Select(key)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("node %q not found", key)
	}

	if isDoc {
		if s.opts.Opener != nil {
			if err := s.opts.Opener.Open(url); err != nil {
				return nil, fmt.Errorf("open %s: %w", url, err)
			}
		}
		return &Selection{Node: node, DocumentURL: url}, nil
	}

	p, err := s.Preview(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Selection{Node: node, Preview: p}, nil
}

// Preview resolves the filtered view URL of a folder node and lists the
// documents in its scope.
func (s *Session) Preview(ctx context.Context, key string) (*Preview, error) {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return nil, ErrNoLibrary
	}
	engine, rec := s.engine, s.record
	path, ok := tree.FindPath(engine.Root(), key)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("node %q not found", key)
	}

	cfg := s.opts.Preview
	resolver := &preview.Resolver{
		Builder: &preview.URLBuilder{
			BaseURL:       cfg.BaseURL,
			Library:       rec.Library,
			ViewPath:      cfg.ViewPath,
			LookupColumns: cfg.LookupColumns,
			Lookup:        preview.ItemIDLookup(engine.Items()),
		},
		Prober: cfg.Prober,
	}
	res, err := resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	if res.Fallback {
		s.logger.WithField("key", key).Debug("filtered view missing, falling back to library root")
	}
	return &Preview{
		Result: res,
		Path:   path,
		Rows:   preview.Rows(engine.ScopeItems(key)),
	}, nil
}

// Publish stores the current collection as the page's snapshot. Later
// mounts serve the snapshot instead of fetching.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	if s.engine == nil || s.record == nil {
		s.mu.Unlock()
		return ErrNoLibrary
	}
	items := s.engine.Items()
	rec := *s.record
	s.mu.Unlock()

	snap, err := source.EncodeSnapshot(items)
	if err != nil {
		return err
	}
	rec.PublishedSnapshot = snap
	if err := s.opts.Configs.Save(ctx, &rec); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	s.mu.Lock()
	s.record = &rec
	s.mu.Unlock()
	s.logger.WithField("items", len(items)).Info("published snapshot")
	return nil
}

// Unpublish drops the page's snapshot.
func (s *Session) Unpublish(ctx context.Context) error {
	s.mu.Lock()
	if s.record == nil {
		s.mu.Unlock()
		return ErrNoLibrary
	}
	rec := *s.record
	s.mu.Unlock()

	rec.PublishedSnapshot = ""
	if err := s.opts.Configs.Save(ctx, &rec); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	s.mu.Lock()
	s.record = &rec
	s.mu.Unlock()
	return nil
}

// InvalidateCache drops the cached collection of the page so that the next
// load fetches.
func (s *Session) InvalidateCache(ctx context.Context) error {
	if s.opts.Cache == nil {
		return nil
	}
	s.mu.Lock()
	rec := s.record
	s.mu.Unlock()
	if rec == nil {
		return ErrNoLibrary
	}
	if err := s.opts.Cache.Delete(ctx, s.cacheKey(rec)); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}
