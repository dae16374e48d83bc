package tracker

import (
	"fmt"
	"io"

	"github.com/brogergvhs/mangaup/internal/config"
	"github.com/brogergvhs/mangaup/internal/providers"
)

type Entry struct {
	Series config.Series
	Latest providers.Chapter
}

// Report holds the classified run result. CaughtUp is sorted by series name
// ascending, Behind by release time descending.
type Report struct {
	CaughtUp []Entry
	Behind   []Entry
}

func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Caught up (%d):\n", len(r.CaughtUp))
	for _, e := range r.CaughtUp {
		fmt.Fprintf(w, "  %s\n", e.Series.Name)
	}

	fmt.Fprintf(w, "\nBehind (%d):\n", len(r.Behind))
	for _, e := range r.Behind {
		fmt.Fprintf(w, "  %s  Ch. %d (%s)\n    %s\n",
			e.Series.Name, e.Latest.Number, e.Latest.ReleasedAgo, e.Latest.URL)
	}
}
