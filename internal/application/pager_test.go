package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

func fullPage(first, pageNum int, hasNext bool) *model.SearchPage {
	nodes := make([]model.PRNode, first)
	for i := range nodes {
		nodes[i] = node("acme", "api", pageNum*first+i+1)
	}
	return &model.SearchPage{
		Nodes:       nodes,
		HasNextPage: hasNext,
		EndCursor:   fmt.Sprintf("cursor-%d", pageNum+1),
	}
}

func TestQueryPager_StopsAtPageCap(t *testing.T) {
	pages := 0
	client := &mockSearchClient{
		search: func(_ context.Context, _ string, first int, _ string) (*model.SearchPage, error) {
			p := fullPage(first, pages, true)
			pages++
			return p, nil
		},
	}

	pager := application.NewQueryPager(client, 100, 10, nil)
	result, err := pager.Collect(context.Background(), "author:octocat type:pr state:open")
	require.NoError(t, err)

	assert.Len(t, result.Nodes, 1000)
	assert.True(t, result.CapReached)
	assert.Equal(t, 10, result.Pages)
	assert.Equal(t, 10, client.callCount())
}

func TestQueryPager_FollowsCursor(t *testing.T) {
	client := &mockSearchClient{
		search: func(_ context.Context, _ string, first int, after string) (*model.SearchPage, error) {
			switch after {
			case "":
				return fullPage(first, 0, true), nil
			case "cursor-1":
				return fullPage(first, 1, false), nil
			default:
				return nil, fmt.Errorf("unexpected cursor %q", after)
			}
		},
	}

	pager := application.NewQueryPager(client, 5, 10, nil)
	result, err := pager.Collect(context.Background(), "q")
	require.NoError(t, err)

	assert.Len(t, result.Nodes, 10)
	assert.False(t, result.CapReached)
	assert.Equal(t, 2, result.Pages)

	calls := client.callsMatching("q")
	require.Len(t, calls, 2)
	assert.Equal(t, "", calls[0].After)
	assert.Equal(t, "cursor-1", calls[1].After)
	assert.Equal(t, 5, calls[0].First)
}

func TestQueryPager_AccumulatesDropped(t *testing.T) {
	calls := 0
	client := &mockSearchClient{
		search: func(_ context.Context, _ string, _ int, _ string) (*model.SearchPage, error) {
			calls++
			return &model.SearchPage{
				Nodes:       []model.PRNode{node("acme", "api", calls)},
				Dropped:     2,
				HasNextPage: calls < 3,
				EndCursor:   "next",
			}, nil
		},
	}

	result, err := application.NewQueryPager(client, 1, 10, nil).Collect(context.Background(), "q")
	require.NoError(t, err)

	assert.Len(t, result.Nodes, 3)
	assert.Equal(t, 6, result.Dropped)
}

func TestQueryPager_EmptyResult(t *testing.T) {
	client := &mockSearchClient{
		search: func(_ context.Context, _ string, _ int, _ string) (*model.SearchPage, error) {
			return &model.SearchPage{}, nil
		},
	}

	result, err := application.NewQueryPager(client, 0, 0, nil).Collect(context.Background(), "q")
	require.NoError(t, err)

	assert.NotNil(t, result.Nodes)
	assert.Empty(t, result.Nodes)
	assert.Equal(t, 1, result.Pages)

	calls := client.callsMatching("q")
	require.Len(t, calls, 1)
	assert.Equal(t, application.DefaultPageSize, calls[0].First)
}

func TestQueryPager_ErrorPropagates(t *testing.T) {
	calls := 0
	client := &mockSearchClient{
		search: func(_ context.Context, _ string, first int, _ string) (*model.SearchPage, error) {
			calls++
			if calls == 2 {
				return nil, driven.ErrTimeout
			}
			return fullPage(first, 0, true), nil
		},
	}

	result, err := application.NewQueryPager(client, 10, 10, nil).Collect(context.Background(), "q")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrTimeout))
	assert.Contains(t, err.Error(), "page 2")
}

func TestQueryPager_MissingCursorIsMalformed(t *testing.T) {
	client := &mockSearchClient{
		search: func(_ context.Context, _ string, _ int, _ string) (*model.SearchPage, error) {
			return &model.SearchPage{HasNextPage: true}, nil
		},
	}

	_, err := application.NewQueryPager(client, 10, 10, nil).Collect(context.Background(), "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrMalformedResponse)
}
