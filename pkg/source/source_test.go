package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-metatree/pkg/field"
	"github.com/mattsolo1/grove-metatree/pkg/models"
)

func TestDecodeRow(t *testing.T) {
	item, err := DecodeRow(map[string]any{
		"ID":                "7",
		"FSObjType":         "1",
		"FileRef":           "/lib/Folder",
		"FileLeafRef":       "Folder",
		"ContentTypeId":     "0x0120001",
		"Title":             "Folder title",
		"Dept":              map[string]any{"Title": "Ops"},
		"@odata.etag":       "\"1\"",
		"__metadata":        map[string]any{"type": "x"},
		"FieldValuesAsText": map[string]any{"Dept": "Ops"},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, item.ID)
	assert.Equal(t, models.FSObjFolder, item.FSObjType)
	assert.Equal(t, "Folder title", item.Title)
	assert.Equal(t, map[string]any{"Dept": map[string]any{"Title": "Ops"}}, item.Fields)
	assert.Equal(t, map[string]any{"Dept": "Ops"}, item.FieldValuesAsText)
	assert.False(t, item.IsDocument())
}

func TestDecodeRowKeepsObjectTitle(t *testing.T) {
	item, err := DecodeRow(map[string]any{
		"Id":    float64(3),
		"Title": map[string]any{"Label": "Translated"},
	})
	require.NoError(t, err)
	assert.Empty(t, item.Title)
	assert.Equal(t, "Translated", field.Resolve(item, "Title"))
}

func TestDecodeRowsNestedFields(t *testing.T) {
	items, err := DecodeRows([]byte(`[
		{"Id": 1, "FileRef": "/lib/a.md", "FileLeafRef": "a.md", "FSObjType": 0, "Fields": {"Dept": "A", "FileRef": "ignored"}},
		{"Id": 2, "FileRef": "/lib/b.md", "FileLeafRef": "b.md", "Dept": "B"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "/lib/a.md", items[0].FileRef)
	assert.Equal(t, "A", items[0].Fields["Dept"])
	assert.Equal(t, "B", items[1].Fields["Dept"])
	assert.True(t, items[1].IsDocument())
}

func TestDecodeRowsInvalid(t *testing.T) {
	_, err := DecodeRows([]byte(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestProject(t *testing.T) {
	fields := map[string]any{"Dept": "A", "Owner": "x", "Year": 2024}

	assert.Equal(t, fields, project(fields, nil))
	assert.Equal(t, map[string]any{"Dept": "A", "Owner": "x"}, project(fields, []string{"Dept", "Owner/Title", "Id"}))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNotebookFetcher(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(lib, "a.md"), "---\ntitle: Alpha\nDept: A\nYear: 2024\n---\n\n# Ignored\n")
	writeFile(t, filepath.Join(lib, "c.txt"), "plain")
	writeFile(t, filepath.Join(lib, "sub", "b.md"), "# Beta\n")
	writeFile(t, filepath.Join(lib, ".git", "HEAD"), "ref")

	f := NewNotebookFetcher(root, nil)
	items, err := f.FetchItems(context.Background(), Query{Library: "docs"})
	require.NoError(t, err)

	var names []string
	for _, it := range items {
		names = append(names, it.FileLeafRef)
	}
	assert.Equal(t, []string{"a.md", "c.txt", "sub", "b.md"}, names)

	a := items[0]
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, "Alpha", a.Title)
	assert.Equal(t, "A", a.Fields["Dept"])
	assert.Equal(t, "md", a.Fields["FileType"])
	assert.True(t, a.IsDocument())

	assert.Equal(t, "txt", field.Resolve(items[1], "FileType"))

	sub := items[2]
	assert.Equal(t, models.FSObjFolder, sub.FSObjType)
	assert.False(t, sub.IsDocument())

	assert.Equal(t, "Beta", items[3].Title)
	assert.Equal(t, filepath.ToSlash(filepath.Join(lib, "sub", "b.md")), items[3].FileRef)
}

func TestNotebookFetcherProjection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "a.md"), "---\nDept: A\nOwner: Ana\n---\nbody")

	f := NewNotebookFetcher(root, nil)
	items, err := f.FetchItems(context.Background(), Query{Library: "lib", Select: []string{"Dept"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"Dept": "A"}, items[0].Fields)
}

func TestNotebookFetcherMissingLibrary(t *testing.T) {
	f := NewNotebookFetcher(t.TempDir(), nil)
	_, err := f.FetchItems(context.Background(), Query{Library: "nope"})
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestNotebookFetcherCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "a.md"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNotebookFetcher(root, nil).FetchItems(ctx, Query{Library: "lib"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRESTFetcherPaging(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/lists/Docs/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"value":[{"Id":2,"FileRef":"/Docs/b.pdf","FileLeafRef":"b.pdf","FSObjType":"0","Dept":{"Title":"B"}}]}`))
			return
		}
		assert.Equal(t, "Id,Title,Dept/Title", r.URL.Query().Get("$select"))
		assert.Equal(t, "Dept", r.URL.Query().Get("$expand"))
		_, _ = w.Write([]byte(`{"value":[{"Id":1,"FileRef":"/Docs/a.pdf","FileLeafRef":"a.pdf","FSObjType":0,"Dept":{"Title":"A"}}],` +
			`"@odata.nextLink":"` + srv.URL + `/lists/Docs/items?page=2"}`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", WithToken("secret"), WithHTTPClient(srv.Client()))
	items, err := f.FetchItems(context.Background(), Query{
		Library: "Docs",
		Select:  []string{"Id", "Title", "Dept/Title"},
		Expand:  []string{"Dept"},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", field.Resolve(items[0], "Dept"))
	assert.Equal(t, "B", field.Resolve(items[1], "Dept"))
	assert.Equal(t, 2, items[1].ID)
}

func TestRESTFetcherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lists/Missing/items" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL)
	_, err := f.FetchItems(context.Background(), Query{Library: "Missing"})
	assert.ErrorIs(t, err, ErrLibraryNotFound)

	_, err = f.FetchItems(context.Background(), Query{Library: "Broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRequestURL(t *testing.T) {
	f := NewRESTFetcher("https://example.test/api")
	assert.Equal(t, "https://example.test/api/lists/My%20Docs/items", f.RequestURL(Query{Library: "My Docs"}))
}

func TestSnapshotRoundTrip(t *testing.T) {
	in := []*models.Item{
		{ID: 1, Title: "A", FileRef: "/lib/a.md", FileLeafRef: "a.md", Fields: map[string]any{"Dept": "Ops"}},
		{ID: 2, FileRef: "/lib/Sub", FileLeafRef: "Sub", FSObjType: models.FSObjFolder, ContentTypeID: "0x0120"},
	}
	snap, err := EncodeSnapshot(in)
	require.NoError(t, err)

	f, err := NewSnapshotFetcher(snap)
	require.NoError(t, err)
	out, err := f.FetchItems(context.Background(), Query{Library: "ignored"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "Ops", field.Resolve(out[0], "Dept"))
	assert.True(t, out[0].IsDocument())
	assert.False(t, out[1].IsDocument())
}

func TestParseSnapshotInvalid(t *testing.T) {
	_, err := ParseSnapshot("")
	assert.Error(t, err)
	_, err = ParseSnapshot("not json")
	assert.Error(t, err)
}
