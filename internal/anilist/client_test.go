package anilist

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock stands in for time.Now/time.Sleep so tests never really wait.
type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (f *fakeClock) now() time.Time {
	return f.t
}

func (f *fakeClock) sleep(d time.Duration) {
	f.slept = append(f.slept, d)
	f.t = f.t.Add(d)
}

func newTestClient(t *testing.T, opts Options) (*Client, *fakeClock) {
	t.Helper()

	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	if opts.DiagPath == "" {
		opts.DiagPath = filepath.Join(t.TempDir(), "anilist_error.json")
	}

	c := New(httpClient, opts)
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.now
	c.sleep = clock.sleep

	return c, clock
}

func TestSendEnforcesMinimumSpacing(t *testing.T) {
	c, clock := newTestClient(t, Options{Spacing: time.Second})

	httpmock.RegisterResponder("POST", DefaultEndpoint,
		httpmock.NewStringResponder(200, `{"data":{}}`))

	_, err := c.Send(context.Background(), "query {}", nil)
	require.NoError(t, err)
	assert.Empty(t, clock.slept, "first call should not wait")

	_, err = c.Send(context.Background(), "query {}", nil)
	require.NoError(t, err)
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Second, clock.slept[0])
}

func TestSendRetriesOn429WithRetryAfter(t *testing.T) {
	c, clock := newTestClient(t, Options{Spacing: time.Second})

	var bodies []string
	calls := 0
	httpmock.RegisterResponder("POST", DefaultEndpoint,
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			bodies = append(bodies, string(raw))

			calls++
			if calls == 1 {
				resp := httpmock.NewStringResponse(429, "")
				resp.Header.Set("Retry-After", "5")
				return resp, nil
			}
			return httpmock.NewStringResponse(200, `{"data":{}}`), nil
		})

	raw, err := c.Send(context.Background(), "query { Viewer { id } }", map[string]any{"page": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{}}`, string(raw))

	require.Equal(t, 2, calls)
	assert.Equal(t, bodies[0], bodies[1], "retransmission must be byte-identical")
	assert.Contains(t, clock.slept, 5*time.Second)
}

func TestSendRetriesOn429WithoutRetryAfter(t *testing.T) {
	c, clock := newTestClient(t, Options{Spacing: time.Second})

	calls := 0
	httpmock.RegisterResponder("POST", DefaultEndpoint,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(429, ""), nil
			}
			return httpmock.NewStringResponse(200, `{"data":{}}`), nil
		})

	_, err := c.Send(context.Background(), "query {}", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, clock.slept, time.Duration(0))
}

func TestSendStopsAtMaxAttempts(t *testing.T) {
	c, _ := newTestClient(t, Options{Spacing: time.Second, MaxAttempts: 2})

	httpmock.RegisterResponder("POST", DefaultEndpoint,
		httpmock.NewStringResponder(429, ""))

	_, err := c.Send(context.Background(), "query {}", nil)

	var statusErr ErrRemoteStatus
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 429, statusErr.Status)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestSendFailsOnOtherStatus(t *testing.T) {
	c, _ := newTestClient(t, Options{Spacing: time.Second})

	httpmock.RegisterResponder("POST", DefaultEndpoint,
		httpmock.NewStringResponder(400, `{"errors":[{"message":"bad query"}]}`))

	_, err := c.Send(context.Background(), "query {}", nil)

	var statusErr ErrRemoteStatus
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.Status)
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "non-429 errors are not retried")
}

func TestSendWritesDiagnosticOnTransportFailure(t *testing.T) {
	diagPath := filepath.Join(t.TempDir(), "anilist_error.json")
	c, _ := newTestClient(t, Options{Spacing: time.Second, DiagPath: diagPath})

	httpmock.RegisterResponder("POST", DefaultEndpoint,
		httpmock.NewErrorResponder(assert.AnError))

	_, err := c.Send(context.Background(), "query {}", map[string]any{"name": "someone"})

	var transportErr ErrRemoteTransport
	require.ErrorAs(t, err, &transportErr)

	raw, readErr := os.ReadFile(diagPath)
	require.NoError(t, readErr, "diagnostic artifact must be written")
	assert.Contains(t, string(raw), "query {}")
	assert.Contains(t, string(raw), assert.AnError.Error())
}

func TestUserProgressFlattensAllLists(t *testing.T) {
	c, _ := newTestClient(t, Options{Spacing: time.Second})

	httpmock.RegisterResponder("POST", DefaultEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"MediaListCollection":{"lists":[
			{"name":"Reading","entries":[{"mediaId":42,"progress":12},{"mediaId":7,"progress":3}]},
			{"name":"Rereading","entries":[{"mediaId":99,"progress":250}]}
		]}}}`))

	records, err := c.UserProgress(context.Background(), "someone")
	require.NoError(t, err)

	assert.ElementsMatch(t, []ProgressRecord{
		{MediaID: 42, Progress: 12},
		{MediaID: 7, Progress: 3},
		{MediaID: 99, Progress: 250},
	}, records)
}
