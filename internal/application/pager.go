package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Default pagination bounds.
const (
	DefaultPageSize = 100
	DefaultMaxPages = 10
)

// PageResult is the accumulated output of one paginated search.
type PageResult struct {
	Nodes      []model.PRNode
	Pages      int
	Dropped    int
	CapReached bool // More pages existed when the page cap stopped the loop.
}

// QueryPager drives cursor-based pagination of a single search filter.
type QueryPager struct {
	client   driven.SearchClient
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// NewQueryPager creates a QueryPager. Non-positive sizes fall back to the defaults.
func NewQueryPager(client driven.SearchClient, pageSize, maxPages int, logger *slog.Logger) *QueryPager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryPager{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Collect fetches pages until the server reports no further page or the page
// cap is hit. Reaching the cap is not an error: the partial result is returned
// with CapReached set.
func (p *QueryPager) Collect(ctx context.Context, filter string) (*PageResult, error) {
	result := &PageResult{Nodes: []model.PRNode{}}
	cursor := ""

	for {
		page, err := p.client.SearchPullRequests(ctx, filter, p.pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("search %q (page %d): %w", filter, result.Pages+1, err)
		}
		result.Pages++
		result.Nodes = append(result.Nodes, page.Nodes...)
		result.Dropped += page.Dropped

		p.logger.Debug("search page fetched",
			"query", filter,
			"page", result.Pages,
			"records", len(page.Nodes),
			"dropped", page.Dropped,
			"has_next_page", page.HasNextPage,
		)

		if !page.HasNextPage {
			break
		}
		if result.Pages >= p.maxPages {
			result.CapReached = true
			p.logger.Warn("pagination cap reached",
				"query", filter,
				"pages", result.Pages,
				"records", len(result.Nodes),
				"cap_reached", true,
			)
			break
		}
		if page.EndCursor == "" {
			return nil, fmt.Errorf("search %q (page %d): next page reported without cursor: %w",
				filter, result.Pages, driven.ErrMalformedResponse)
		}
		cursor = page.EndCursor
	}

	if result.Dropped > 0 {
		p.logger.Warn("malformed search records dropped",
			"query", filter,
			"dropped", result.Dropped,
		)
	}

	return result, nil
}
