// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"
	"strings"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// Sentinel errors returned by SearchClient implementations. Callers match them
// with errors.Is.
var (
	// ErrTransportUnavailable indicates the query mechanism cannot be invoked at all
	// (for example the gh executable is not installed).
	ErrTransportUnavailable = errors.New("query transport unavailable")

	// ErrLaunchFailed indicates the invocation was attempted but did not start or
	// exited without producing a response.
	ErrLaunchFailed = errors.New("query transport failed to launch")

	// ErrTimeout indicates the invocation exceeded its deadline and was terminated.
	ErrTimeout = errors.New("query transport timed out")

	// ErrMalformedResponse indicates the output could not be parsed as the
	// expected response envelope.
	ErrMalformedResponse = errors.New("malformed query response")
)

// UpstreamError is returned when the response envelope parsed but carried an
// errors list. Messages are surfaced verbatim.
type UpstreamError struct {
	Messages []string
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + strings.Join(e.Messages, "; ")
}

// SearchClient defines the driven port for the platform's search query interface.
type SearchClient interface {
	// SearchPullRequests fetches one page of PRs matching the search filter.
	// An empty after requests the first page. Individual records missing
	// required fields are dropped and counted in SearchPage.Dropped.
	SearchPullRequests(ctx context.Context, filter string, first int, after string) (*model.SearchPage, error)

	// CurrentLogin returns the login the transport is authenticated as.
	CurrentLogin(ctx context.Context) (string, error)
}
