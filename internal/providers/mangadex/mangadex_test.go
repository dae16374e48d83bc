package mangadex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brogergvhs/mangaup/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/manga/abc/feed", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "en", q.Get("translatedLanguage[]"))
		assert.Equal(t, "desc", q.Get("order[chapter]"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLatest(t *testing.T) {
	feed := `{"result":"ok","data":[
		{"id":"chapter-new","attributes":{"chapter":"12","readableAt":"2024-01-01T00:00:00Z"}},
		{"id":"chapter-old","attributes":{"chapter":"11","readableAt":"2023-12-01T00:00:00Z"}}
	]}`
	server := setupTestServer(t, feed, http.StatusOK)
	p := NewWithBaseURL(server.Client(), server.URL, "https://mangadex.org")

	ch, err := p.Latest(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", ch.Site)
	assert.Equal(t, 12, ch.Number)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ch.Released)
	assert.Equal(t, "https://mangadex.org/chapter/chapter-new", ch.URL)
	assert.NotEmpty(t, ch.ReleasedAgo)
}

func TestLatestEmptyFeed(t *testing.T) {
	server := setupTestServer(t, `{"result":"ok","data":[]}`, http.StatusOK)
	p := NewWithBaseURL(server.Client(), server.URL, "https://mangadex.org")

	_, err := p.Latest(context.Background(), "abc")

	var scrapeErr providers.ErrScrape
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, "abc", scrapeErr.Site)
}

func TestLatestBadStatus(t *testing.T) {
	server := setupTestServer(t, `{"result":"error"}`, http.StatusInternalServerError)
	p := NewWithBaseURL(server.Client(), server.URL, "https://mangadex.org")

	_, err := p.Latest(context.Background(), "abc")

	var scrapeErr providers.ErrScrape
	require.ErrorAs(t, err, &scrapeErr)
}

func TestParseChapterNumber(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, false},
		{"112.5", 112, false},
		{"", 0, true},
		{"-3", 0, true},
		{"oneshot", 0, true},
	}

	for _, tc := range cases {
		n, err := parseChapterNumber(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, n, "input %q", tc.in)
	}
}
