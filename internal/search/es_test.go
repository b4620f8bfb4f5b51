package search

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/store"
)

type fakeES struct {
	mu        sync.Mutex
	bulkLines []string
	query     map[string]any
	fail      bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		fmt.Fprint(w, `{"name":"test","cluster_name":"test","version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				f.bulkLines = append(f.bulkLines, line)
			}
		}
		fmt.Fprint(w, `{"took":1,"errors":false,"items":[]}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		if f.fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":"unavailable"}`)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.query)
		fmt.Fprint(w, `{"hits":{"total":{"value":1},"hits":[
			{"_source":{"id":4,"title":"Lash Mascara","price":"450","thumbnail":"m.png","rating":4.9}}
		]}}`)
	default:
		http.NotFound(w, r)
	}
}

func newFakeIndex(t *testing.T) (*fakeES, *ESIndex) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	idx, err := NewESIndex(ESConfig{URL: srv.URL, Index: "products"}, logging.Discard())
	require.NoError(t, err)
	return fake, idx
}

func TestESIndex_IndexProducts(t *testing.T) {
	t.Parallel()

	fake, idx := newFakeIndex(t)
	require.NoError(t, idx.IndexProducts(context.Background(), fixtureProducts()[:2]))
	require.NoError(t, idx.IndexProducts(context.Background(), nil))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.bulkLines, 4)
	assert.JSONEq(t, `{"index":{"_index":"products","_id":"1"}}`, fake.bulkLines[0])
	assert.Contains(t, fake.bulkLines[1], `"title":"Velvet Lipstick"`)
}

func TestESIndex_Search(t *testing.T) {
	t.Parallel()

	fake, idx := newFakeIndex(t)
	total, hits, err := idx.Search(context.Background(), "mascra", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, hits, 1)
	assert.Equal(t, 4, hits[0].ID)
	assert.True(t, decimal.NewFromInt(450).Equal(hits[0].Price))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	mm := fake.query["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "mascra", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}

func TestService_Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.New(nil)
	st.SetProducts(fixtureProducts())
	svc := &Service{
		Store:  st,
		Recent: NewRecentSearches(ctx, kv.NewMemoryStore(), logging.Discard()),
		Log:    logging.Discard(),
	}

	got := svc.Search(ctx, "serum", DefaultFilters())
	assert.Equal(t, []int{2}, ids(got))
	assert.Equal(t, "serum", st.Snapshot().SearchQuery)
	assert.Equal(t, []string{"serum"}, svc.Recent.List())

	q, got := svc.Voice(ctx, "show me mascara please", Filters{})
	assert.Equal(t, "mascara", q)
	assert.Equal(t, []int{4}, ids(got))

	q, got = svc.Voice(ctx, "please", Filters{})
	assert.Empty(t, q)
	assert.Nil(t, got)
}

func TestService_SearchFallsBackWhenIndexFails(t *testing.T) {
	t.Parallel()

	fake, idx := newFakeIndex(t)
	st := store.New(nil)
	st.SetProducts(fixtureProducts())
	svc := &Service{Store: st, Index: idx, Log: logging.Discard()}

	got := svc.Search(context.Background(), "mascra", Filters{})
	assert.Equal(t, []int{4}, ids(got), "index results are used when available")

	fake.mu.Lock()
	fake.fail = true
	fake.mu.Unlock()

	got = svc.Search(context.Background(), "lipstick", Filters{})
	assert.Equal(t, []int{1}, ids(got))
}
