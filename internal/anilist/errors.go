package anilist

import "fmt"

// ErrRemoteStatus indicates a non-recoverable HTTP error status from the
// AniList API. 429 is never surfaced as ErrRemoteStatus unless the retry
// budget is exhausted.
type ErrRemoteStatus struct {
	Status int
}

func (e ErrRemoteStatus) Error() string {
	return fmt.Sprintf("anilist: server returned status %d", e.Status)
}

// ErrRemoteTransport indicates a transport-level failure with no HTTP
// status. The raw error is persisted to the diagnostic file before this is
// returned.
type ErrRemoteTransport struct {
	Err error
}

func (e ErrRemoteTransport) Error() string {
	return fmt.Sprintf("anilist: request failed: %v", e.Err)
}

func (e ErrRemoteTransport) Unwrap() error {
	return e.Err
}
