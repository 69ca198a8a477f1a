// Package github implements the SearchClient port against GitHub's GraphQL API,
// either through the gh command-line client or directly over HTTPS.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	gh "github.com/cli/go-gh/v2"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SearchClient = (*CLIClient)(nil)

// DefaultQueryTimeout bounds a single transport invocation.
const DefaultQueryTimeout = 30 * time.Second

// execFunc runs gh with the given arguments. Stdout and stderr are drained
// while the process runs; cancelling ctx kills the process.
type execFunc func(ctx context.Context, args ...string) (stdout, stderr bytes.Buffer, err error)

// CLIClient issues GraphQL queries through `gh api graphql`, reusing the
// credentials gh already holds.
type CLIClient struct {
	timeout  time.Duration
	exec     execFunc
	lookPath func() (string, error)
}

// NewCLIClient creates a CLIClient. A non-positive timeout uses DefaultQueryTimeout.
func NewCLIClient(timeout time.Duration) *CLIClient {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &CLIClient{
		timeout:  timeout,
		exec:     gh.ExecContext,
		lookPath: gh.Path,
	}
}

// SearchPullRequests runs one page of the search query.
func (c *CLIClient) SearchPullRequests(ctx context.Context, filter string, first int, after string) (*model.SearchPage, error) {
	args := []string{
		"api", "graphql",
		"-f", "query=" + searchQuery,
		"-f", "searchQuery=" + filter,
		"-F", "first=" + strconv.Itoa(first),
	}
	if after != "" {
		args = append(args, "-f", "after="+after)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	data, err := parseEnvelope(out)
	if err != nil {
		return nil, err
	}
	return decodeSearchData(data)
}

// CurrentLogin returns the login gh is authenticated as.
func (c *CLIClient) CurrentLogin(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "api", "graphql", "-f", "query="+viewerQuery)
	if err != nil {
		return "", err
	}

	data, err := parseEnvelope(out)
	if err != nil {
		return "", err
	}
	return decodeViewerLogin(data)
}

// run invokes gh under the client's deadline and classifies failures.
func (c *CLIClient) run(ctx context.Context, args ...string) ([]byte, error) {
	if _, err := c.lookPath(); err != nil {
		return nil, fmt.Errorf("%w: %v", driven.ErrTransportUnavailable, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, err := c.exec(runCtx, args...)
	slog.Debug("gh invocation finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"stdout_bytes", stdout.Len(),
		"error", err,
	)

	if err == nil {
		return stdout.Bytes(), nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: gh did not finish within %s", driven.ErrTimeout, c.timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	// gh exits non-zero when the response carries GraphQL errors but still
	// prints the envelope.
	if stdout.Len() > 0 {
		if _, perr := parseEnvelope(stdout.Bytes()); perr != nil {
			var upstream *driven.UpstreamError
			if errors.As(perr, &upstream) {
				return nil, upstream
			}
		}
	}

	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return nil, fmt.Errorf("%w: %v", driven.ErrLaunchFailed, err)
	}
	return nil, fmt.Errorf("%w: %v: %s", driven.ErrLaunchFailed, err, msg)
}
