package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/popcorn/internal/domain"
)

func sampleResponse() *domain.CatalogResponse {
	return &domain.CatalogResponse{
		Page:         1,
		TotalPages:   3,
		TotalResults: 42,
		Results: []domain.MovieSummary{
			{ID: 1, Title: "Alien", PosterPath: "/a.jpg", ReleaseDate: "1979-05-25", VoteAverage: 8.1},
		},
	}
}

func TestCatalogStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewCatalogStore(dir, "https://api.example.com/3/")
	require.NoError(t, err)

	before := time.Now()
	require.NoError(t, s.SaveResponse("k1", sampleResponse()))
	require.NoError(t, s.RecordQuery("alien"))
	require.NoError(t, s.Close())

	s, err = NewCatalogStore(dir, "https://API.example.com/3")
	require.NoError(t, err)
	defer s.Close()

	resp, storedAt, ok := s.GetResponse("k1")
	require.True(t, ok)
	assert.Equal(t, sampleResponse(), resp)
	assert.False(t, storedAt.Before(before.Truncate(time.Second)))
	assert.Equal(t, []string{"alien"}, s.RecentQueries())
	assert.Equal(t, 1, s.ResponseCount())
}

func TestCatalogStore_SeparateDirPerCatalog(t *testing.T) {
	dir := t.TempDir()

	a, err := NewCatalogStore(dir, "https://one.example.com")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewCatalogStore(dir, "https://two.example.com")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.SaveResponse("k", sampleResponse()))
	_, _, ok := b.GetResponse("k")
	assert.False(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	_, err = os.Stat(filepath.Join(dir, entries[0].Name(), "popcorn.db"))
	assert.NoError(t, err)
}

func TestCatalogStore_MemoryOnly(t *testing.T) {
	s, err := NewCatalogStore("", "")
	require.NoError(t, err)

	_, _, ok := s.GetResponse("missing")
	assert.False(t, ok)

	require.NoError(t, s.SaveResponse("k", sampleResponse()))
	_, _, ok = s.GetResponse("k")
	assert.True(t, ok)
	assert.Equal(t, 1, s.ResponseCount())

	s.InvalidateAll()
	_, _, ok = s.GetResponse("k")
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}

func TestCatalogStore_InvalidateAllKeepsHistory(t *testing.T) {
	s, err := NewCatalogStore(t.TempDir(), "https://api.example.com")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveResponse("a", sampleResponse()))
	require.NoError(t, s.SaveResponse("b", sampleResponse()))
	require.NoError(t, s.RecordQuery("dune"))

	s.InvalidateAll()
	assert.Equal(t, 0, s.ResponseCount())
	_, _, ok := s.GetResponse("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"dune"}, s.RecentQueries())

	s.ClearHistory()
	assert.Empty(t, s.RecentQueries())
}

func TestCatalogStore_RecordQuery(t *testing.T) {
	s, err := NewCatalogStore("", "")
	require.NoError(t, err)

	require.NoError(t, s.RecordQuery("alien"))
	require.NoError(t, s.RecordQuery("  dune "))
	require.NoError(t, s.RecordQuery(""))
	require.NoError(t, s.RecordQuery("ALIEN"))
	assert.Equal(t, []string{"ALIEN", "dune"}, s.RecentQueries())

	for i := 0; i < MaxHistory+10; i++ {
		require.NoError(t, s.RecordQuery(fmt.Sprintf("q%d", i)))
	}
	history := s.RecentQueries()
	assert.Len(t, history, MaxHistory)
	assert.Equal(t, fmt.Sprintf("q%d", MaxHistory+9), history[0])
}

func TestHashKey(t *testing.T) {
	k := HashKey("/movie/popular?&page=1&api_key=secret")
	assert.Len(t, k, 24)
	assert.NotContains(t, k, "secret")
	assert.Equal(t, k, HashKey("/movie/popular?&page=1&api_key=secret"))
	assert.NotEqual(t, k, HashKey("/movie/popular?&page=2&api_key=secret"))
}
