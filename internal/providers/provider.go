package providers

import (
	"context"
	"time"
)

const (
	KindViz      = "viz"
	KindMangadex = "mangadex"
)

// Chapter is the latest published chapter of one series, normalized across
// providers. ReleasedAgo is a snapshot of the relative release time taken
// when the chapter was fetched.
type Chapter struct {
	Site        string
	Number      int
	Released    time.Time
	ReleasedAgo string
	URL         string
}

type Scraper interface {
	Latest(ctx context.Context, siteID string) (Chapter, error)
}
