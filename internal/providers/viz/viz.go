// Package viz scrapes the latest released chapter from the VIZ Shonen Jump
// chapter listing pages.
package viz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/mangaup/internal/providers"
	"github.com/brogergvhs/mangaup/internal/util"
)

const dateLayout = "January 2, 2006"

var nonDigits = regexp.MustCompile(`\D`)

type Provider struct {
	client  *http.Client
	baseURL string
}

func New(client *http.Client) *Provider {
	return &Provider{
		client:  client,
		baseURL: "https://www.viz.com",
	}
}

// NewWithBaseURL is used by tests to point the provider at a fixture server.
func NewWithBaseURL(client *http.Client, baseURL string) *Provider {
	return &Provider{client: client, baseURL: baseURL}
}

// Latest fetches the series listing page and extracts the newest chapter.
// VIZ lists chapters newest-first in a table; each row carries an anchor
// whose id is prefixed "ch-", a numeric chapter label cell and a release
// date cell.
func (p *Provider) Latest(ctx context.Context, siteID string) (providers.Chapter, error) {
	target := fmt.Sprintf("%s/shonenjump/chapters/%s", p.baseURL, siteID)

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}

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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}

	anchor := doc.Find(`a[id^="ch-"]`).First()
	if anchor.Length() == 0 {
		return providers.Chapter{}, providers.ErrScrape{
			Site: siteID,
			Err:  errors.New("no chapter listing found"),
		}
	}

	href, ok := anchor.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return providers.Chapter{}, providers.ErrScrape{
			Site: siteID,
			Err:  errors.New("chapter link has no href"),
		}
	}

	row := anchor.Closest("tr")

	number, err := parseChapterNumber(row.Find("td.ch-num-list-spacing").First().Text())
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{Site: siteID, Err: err}
	}

	dateText := strings.TrimSpace(row.Find("td.ch-date-list").First().Text())
	released, err := time.Parse(dateLayout, dateText)
	if err != nil {
		return providers.Chapter{}, providers.ErrScrape{
			Site: siteID,
			Err:  fmt.Errorf("release date %q: %w", dateText, err),
		}
	}

	return providers.Chapter{
		Site:        siteID,
		Number:      number,
		Released:    released,
		ReleasedAgo: util.RelTime(released, time.Now()),
		URL:         resolveURL(p.baseURL, href),
	}, nil
}

// parseChapterNumber strips everything but digits from a label such as
// "Ch. 1099" before parsing.
func parseChapterNumber(label string) (int, error) {
	digits := nonDigits.ReplaceAllString(label, "")
	if digits == "" {
		return 0, fmt.Errorf("no chapter number in %q", strings.TrimSpace(label))
	}

	return strconv.Atoi(digits)
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
