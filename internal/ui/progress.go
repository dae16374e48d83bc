package ui

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ScrapeProgress renders a single bar that advances once per scraped
// series. Scraping is strictly sequential, so there is only ever one bar.
type ScrapeProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar

	current atomic.Int64
	label   atomic.Value // name of the series being scraped

	start time.Time
	final atomic.Bool
}

func NewScrapeProgress(total int) *ScrapeProgress {
	sp := &ScrapeProgress{
		p: mpb.New(
			mpb.WithWidth(52),
			mpb.WithOutput(os.Stdout),
			mpb.WithRefreshRate(120*time.Millisecond),
		),
		start: time.Now(),
	}
	sp.label.Store("")

	sp.bar = sp.p.New(
		int64(total),
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name("Scraping  "),
		),

		mpb.AppendDecorators(
			decor.CountersNoUnit(" %d/%d series", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				if name, _ := sp.label.Load().(string); name != "" {
					return " | " + name
				}
				return ""
			}),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | %ds", int(time.Since(sp.start).Seconds()))
			}),
		),
	)

	return sp
}

// StartSeries shows which series is being fetched next to the bar.
func (sp *ScrapeProgress) StartSeries(name string) {
	if sp.final.Load() {
		return
	}

	sp.label.Store(name)
}

func (sp *ScrapeProgress) SeriesDone() {
	if sp.final.Load() {
		return
	}

	sp.bar.SetCurrent(sp.current.Add(1))
}

// Close finalizes the bar even when the run aborted partway through.
func (sp *ScrapeProgress) Close() {
	if sp.final.Swap(true) {
		return
	}

	sp.bar.Abort(true)
	sp.p.Wait()
}
