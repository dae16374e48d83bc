// Package tracker runs one reconciliation pass: scrape the latest chapter of
// every tracked series, fetch the user's AniList progress in bulk, and split
// the series into caught-up and behind.
package tracker

import (
	"context"
	"net/http"
	"sort"

	"github.com/brogergvhs/mangaup/internal/anilist"
	"github.com/brogergvhs/mangaup/internal/config"
	"github.com/brogergvhs/mangaup/internal/providers"
	"github.com/brogergvhs/mangaup/internal/providers/mangadex"
	"github.com/brogergvhs/mangaup/internal/providers/viz"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type progressAPI interface {
	UserProgress(ctx context.Context, userName string) ([]anilist.ProgressRecord, error)
}

type Tracker struct {
	cfg *config.Config
	api progressAPI

	// scraperFor is swapped out in tests; the default dispatches on the
	// series' provider field.
	scraperFor func(kind string) (providers.Scraper, error)

	// OnSeries is called before each scrape, OnScraped after. Both are
	// optional; cmd wires them to the progress bar.
	OnSeries  func(name string)
	OnScraped func(name string)
}

func New(cfg *config.Config, client *http.Client, api progressAPI) *Tracker {
	return &Tracker{
		cfg: cfg,
		api: api,
		scraperFor: func(kind string) (providers.Scraper, error) {
			switch kind {
			case providers.KindViz:
				return viz.New(client), nil
			case providers.KindMangadex:
				return mangadex.New(client), nil
			default:
				return nil, providers.ErrUnknownProvider{Kind: kind}
			}
		},
	}
}

// Run executes the whole pass sequentially. Any scrape failure aborts the
// run; there is no per-series isolation and no partial report.
func (t *Tracker) Run(ctx context.Context) (*Report, error) {
	collator := collate.New(language.English)

	series := make([]config.Series, len(t.cfg.Series))
	copy(series, t.cfg.Series)
	sort.SliceStable(series, func(i, j int) bool {
		return collator.CompareString(series[i].Name, series[j].Name) < 0
	})

	scraped := make([]Entry, 0, len(series))
	for _, s := range series {
		if t.OnSeries != nil {
			t.OnSeries(s.Name)
		}

		scraper, err := t.scraperFor(s.Provider)
		if err != nil {
			return nil, err
		}

		latest, err := scraper.Latest(ctx, s.SiteID)
		if err != nil {
			return nil, err
		}

		scraped = append(scraped, Entry{Series: s, Latest: latest})
		if t.OnScraped != nil {
			t.OnScraped(s.Name)
		}
	}

	records, err := t.api.UserProgress(ctx, t.cfg.User)
	if err != nil {
		return nil, err
	}

	progress := make(map[int]int, len(records))
	for _, r := range records {
		progress[r.MediaID] = r.Progress
	}

	report := &Report{}
	for _, e := range scraped {
		// Series the user never started on AniList have no record and
		// are left out of the report entirely.
		count, ok := progress[e.Series.AnilistID]
		if !ok {
			continue
		}

		if count >= e.Latest.Number {
			report.CaughtUp = append(report.CaughtUp, e)
		} else {
			report.Behind = append(report.Behind, e)
		}
	}

	sort.SliceStable(report.CaughtUp, func(i, j int) bool {
		return collator.CompareString(report.CaughtUp[i].Series.Name, report.CaughtUp[j].Series.Name) < 0
	})
	sort.SliceStable(report.Behind, func(i, j int) bool {
		return report.Behind[i].Latest.Released.After(report.Behind[j].Latest.Released)
	})

	return report, nil
}
