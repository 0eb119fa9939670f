package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-metatree/pkg/frontmatter"
	"github.com/mattsolo1/grove-metatree/pkg/models"
)

const (
	documentContentType = "0x0101"
	folderContentType   = models.FolderContentTypePrefix
)

// NotebookFetcher serves a directory of files as a library. Every file is a
// document, every subdirectory a folder row, and the YAML frontmatter of
// markdown files provides the metadata columns. Two synthetic columns are
// always available: FileType (extension) and Modified.
type NotebookFetcher struct {
	root   string
	logger *logrus.Entry
}

// NewNotebookFetcher serves libraries below root. A library is a directory
// path relative to root, or an absolute path.
func NewNotebookFetcher(root string, logger *logrus.Entry) *NotebookFetcher {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
		logger.Logger.SetOutput(io.Discard)
	}
	return &NotebookFetcher{root: root, logger: logger.WithField("component", "notebook-fetcher")}
}

// LibraryPath returns the directory backing a library.
func (f *NotebookFetcher) LibraryPath(library string) string {
	if filepath.IsAbs(library) {
		return library
	}
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(library, "/")))
}

// FetchItems implements Fetcher.
func (f *NotebookFetcher) FetchItems(ctx context.Context, q Query) ([]*models.Item, error) {
	dir := f.LibraryPath(q.Library)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, q.Library)
	}

	var items []*models.Item
	nextID := 1
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == dir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		item, err := f.newItem(path, d)
		if err != nil {
			f.logger.WithError(err).WithField("path", path).Warn("skipping unreadable file")
			return nil
		}
		item.ID = nextID
		nextID++
		item.Fields = project(item.Fields, q.Select)
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library %s: %w", q.Library, err)
	}

	f.logger.WithFields(logrus.Fields{
		"library": q.Library,
		"items":   len(items),
	}).Debug("fetched notebook items")
	return items, nil
}

// newItem builds an item from a directory entry, reading frontmatter for
// markdown files.
func (f *NotebookFetcher) newItem(path string, d fs.DirEntry) (*models.Item, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		FileRef:     filepath.ToSlash(path),
		FileLeafRef: d.Name(),
		Fields: map[string]any{
			"Modified": info.ModTime(),
		},
	}

	if d.IsDir() {
		item.FSObjType = models.FSObjFolder
		item.ContentTypeID = folderContentType
		item.Title = d.Name()
		return item, nil
	}

	item.FSObjType = models.FSObjFile
	item.ContentTypeID = documentContentType
	item.Fields["FileType"] = strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Name())), ".")
	item.Title = strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))

	if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
		return item, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(string(content))
	if err != nil {
		// A broken header leaves the document visible without metadata.
		f.logger.WithError(err).WithField("path", path).Debug("invalid frontmatter")
		return item, nil
	}
	for k, v := range meta {
		item.Fields[k] = v
	}
	switch {
	case stringField(meta, "title") != "":
		item.Title = stringField(meta, "title")
	case stringField(meta, "Title") != "":
		item.Title = stringField(meta, "Title")
	case frontmatter.ExtractTitle(body) != "":
		item.Title = frontmatter.ExtractTitle(body)
	}
	if created, ok := meta["created"].(string); ok {
		if ts, err := frontmatter.ParseTimestamp(created); err == nil {
			item.Fields["created"] = ts
		}
	}
	return item, nil
}

func stringField(meta frontmatter.Metadata, key string) string {
	s, _ := meta[key].(string)
	return s
}
