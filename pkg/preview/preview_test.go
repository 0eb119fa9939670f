package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-metatree/pkg/filter"
	"github.com/mattsolo1/grove-metatree/pkg/models"
	"github.com/mattsolo1/grove-metatree/pkg/tree"
)

func groupPath() []*tree.Node {
	root := &tree.Node{Key: "lib", Kind: tree.KindRoot}
	dept := &tree.Node{
		Key:   "Dept|A & B|1|",
		Kind:  tree.KindGroup,
		Level: 1,
		Group: &tree.Group{Column: "Dept", Value: "A & B"},
		Scope: []filter.Constraint{{Column: "Dept", Value: "A & B"}},
	}
	owner := &tree.Node{
		Key:   "Owner|Ana|2|Dept eq 'A & B'",
		Kind:  tree.KindGroup,
		Level: 2,
		Group: &tree.Group{Column: "Owner", Value: "Ana"},
	}
	return []*tree.Node{root, dept, owner}
}

func TestBuild(t *testing.T) {
	b := &URLBuilder{BaseURL: "https://host/sites/x/", Library: "Docs", ViewPath: "Forms/AllItems.aspx"}

	assert.Equal(t, "https://host/sites/x/Docs", b.RootURL())
	assert.Equal(t, "https://host/sites/x/Docs/Forms/AllItems.aspx", b.ViewURL())
	assert.Equal(t,
		"https://host/sites/x/Docs/Forms/AllItems.aspx?FilterField1=Dept&FilterValue1=A+%26+B&FilterField2=Owner&FilterValue2=Ana",
		b.Build(groupPath()))
	assert.Equal(t, b.ViewURL(), b.Build(groupPath()[:1]))
}

func TestBuildLookupColumn(t *testing.T) {
	items := []*models.Item{
		{ID: 1, Fields: map[string]any{"Owner": map[string]any{"Title": "Bea", "Id": float64(4)}}},
		{ID: 2, Fields: map[string]any{"Owner": map[string]any{"Title": "Ana"}, "OwnerId": float64(9)}},
	}
	b := &URLBuilder{
		BaseURL:       "https://host",
		Library:       "Docs",
		LookupColumns: []string{"owner"},
		Lookup:        ItemIDLookup(items),
	}

	assert.Equal(t,
		"https://host/Docs?FilterField1=Dept&FilterValue1=A+%26+B&FilterField2=Owner&FilterValue2=9&FilterLookupId2=1",
		b.Build(groupPath()))
}

func TestBuildLookupMissKeepsValue(t *testing.T) {
	b := &URLBuilder{
		BaseURL:       "https://host",
		Library:       "Docs",
		LookupColumns: []string{"Owner"},
		Lookup:        ItemIDLookup(nil),
	}
	assert.Contains(t, b.Build(groupPath()), "FilterValue2=Ana")
	assert.NotContains(t, b.Build(groupPath()), "FilterLookupId")
}

func TestItemIDLookupFromObject(t *testing.T) {
	lookup := ItemIDLookup([]*models.Item{
		{Fields: map[string]any{"Owner": map[string]any{"Title": "Bea", "Id": float64(4)}}},
	})
	id, ok := lookup.LookupID("Owner", "Bea")
	require.True(t, ok)
	assert.Equal(t, "4", id)
}

func TestItemIDLookupNumericShapes(t *testing.T) {
	lookup := ItemIDLookup([]*models.Item{
		{Fields: map[string]any{"Owner": "Ana", "OwnerId": json.Number("9")}},
		{Fields: map[string]any{"Owner": "Bea", "OwnerId": int32(12)}},
		{Fields: map[string]any{"Owner": "Cid", "OwnerId": uint64(1) << 40}},
		{Fields: map[string]any{"Owner": map[string]any{"Title": "Dan", "LookupId": int64(77)}}},
	})
	for value, want := range map[string]string{"Ana": "9", "Bea": "12", "Cid": "1099511627776", "Dan": "77"} {
		id, ok := lookup.LookupID("Owner", value)
		if assert.True(t, ok, value) {
			assert.Equal(t, want, id, value)
		}
	}
}

func TestResolverFallsBackToRoot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/Docs/Forms/AllItems.aspx" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	prober := NewHTTPProber(srv.Client(), nil)

	ok := &Resolver{
		Builder: &URLBuilder{BaseURL: srv.URL, Library: "Docs", ViewPath: "Forms/AllItems.aspx"},
		Prober:  prober,
	}
	res, err := ok.Resolve(context.Background(), groupPath())
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Contains(t, res.URL, "FilterField1=Dept")

	missing := &Resolver{
		Builder: &URLBuilder{BaseURL: srv.URL, Library: "Docs", ViewPath: "Forms/Missing.aspx"},
		Prober:  prober,
	}
	res, err = missing.Resolve(context.Background(), groupPath())
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, srv.URL+"/Docs", res.URL)
}

func TestHTTPProberTreatsErrorsAsMissing(t *testing.T) {
	p := NewHTTPProber(nil, nil)
	assert.False(t, p.Exists(context.Background(), "http://127.0.0.1:0/nothing"))
	assert.False(t, p.Exists(context.Background(), "://bad"))
}

func TestResolverWithoutProber(t *testing.T) {
	r := &Resolver{Builder: &URLBuilder{BaseURL: "https://host", Library: "Docs"}}
	res, err := r.Resolve(context.Background(), groupPath())
	require.NoError(t, err)
	assert.False(t, res.Fallback)

	_, err = (&Resolver{}).Resolve(context.Background(), nil)
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	rows := Rows([]*models.Item{
		{ID: 1, Title: "A", FileRef: "/Docs/a.pdf", FileLeafRef: "a.pdf"},
		{ID: 2, FileRef: "/Docs/Sub", FileLeafRef: "Sub", FSObjType: models.FSObjFolder},
	})
	assert.Equal(t, []Row{{ID: 1, Title: "A", FileRef: "/Docs/a.pdf", FileName: "a.pdf"}}, rows)
}
