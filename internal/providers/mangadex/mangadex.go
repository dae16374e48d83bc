// Package mangadex fetches the latest English chapter of a series from the
// MangaDex API chapter feed.
package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/brogergvhs/mangaup/internal/providers"
	"github.com/brogergvhs/mangaup/internal/util"
)

type Provider struct {
	client     *http.Client
	apiBaseURL string
	siteURL    string
}

func New(client *http.Client) *Provider {
	return &Provider{
		client:     client,
		apiBaseURL: "https://api.mangadex.org",
		siteURL:    "https://mangadex.org",
	}
}

// NewWithBaseURL is used by tests to point the provider at a fixture server.
func NewWithBaseURL(client *http.Client, apiBaseURL, siteURL string) *Provider {
	return &Provider{client: client, apiBaseURL: apiBaseURL, siteURL: siteURL}
}

type chapterFeedResponse struct {
	Result string        `json:"result"`
	Data   []chapterData `json:"data"`
}

type chapterData struct {
	ID         string `json:"id"`
	Attributes struct {
		Chapter    string    `json:"chapter"`
		ReadableAt time.Time `json:"readableAt"`
	} `json:"attributes"`
}

// Latest queries the series feed ordered by chapter descending and takes
// the first entry.
func (p *Provider) Latest(ctx context.Context, siteID string) (providers.Chapter, error) {
	target := fmt.Sprintf("%s/manga/%s/feed", p.apiBaseURL, siteID)

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}

	q := req.URL.Query()
	q.Add("limit", "10")
	q.Add("translatedLanguage[]", "en")
	q.Add("order[chapter]", "desc")
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return providers.Chapter{}, providers.ErrScrape{
			Site: siteID,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var feed chapterFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}

	if len(feed.Data) == 0 {
		return providers.Chapter{}, providers.ErrScrape{
			Site: siteID,
			Err:  errors.New("chapter feed is empty"),
		}
	}

	latest := feed.Data[0]

	number, err := parseChapterNumber(latest.Attributes.Chapter)
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}

	return providers.Chapter{
		Site:        siteID,
		Number:      number,
		Released:    latest.Attributes.ReadableAt,
		ReleasedAgo: util.RelTime(latest.Attributes.ReadableAt, time.Now()),
		URL:         fmt.Sprintf("%s/chapter/%s", p.siteURL, latest.ID),
	}, nil
}

// parseChapterNumber accepts MangaDex chapter strings like "112" or
// "112.5"; fractional chapters truncate to the main number.
func parseChapterNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("bad chapter number %q", s)
	}

	return int(f), nil
}
