package providers

import "fmt"

// ErrScrape indicates the chapter listing for a series was missing,
// malformed, or could not be fetched.
type ErrScrape struct {
	Site string
	Err  error
}

func (e ErrScrape) Error() string {
	return fmt.Sprintf("scrape %s: %v", e.Site, e.Err)
}

func (e ErrScrape) Unwrap() error {
	return e.Err
}

// ErrUnknownProvider indicates a series is configured with a provider this
// build does not know about.
type ErrUnknownProvider struct {
	Kind string
}

func (e ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Kind)
}
