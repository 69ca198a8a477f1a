package application_test

import (
	"context"
	"strings"
	"sync"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// --- Mock implementations ---

type searchCall struct {
	Filter string
	First  int
	After  string
}

type mockSearchClient struct {
	mu     sync.Mutex
	calls  []searchCall
	search func(ctx context.Context, filter string, first int, after string) (*model.SearchPage, error)
	login  func(ctx context.Context) (string, error)
}

func (m *mockSearchClient) SearchPullRequests(ctx context.Context, filter string, first int, after string) (*model.SearchPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{Filter: filter, First: first, After: after})
	m.mu.Unlock()
	return m.search(ctx, filter, first, after)
}

func (m *mockSearchClient) CurrentLogin(ctx context.Context) (string, error) {
	if m.login == nil {
		return "octocat", nil
	}
	return m.login(ctx)
}

func (m *mockSearchClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSearchClient) callsMatching(prefix string) []searchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []searchCall
	for _, c := range m.calls {
		if strings.HasPrefix(c.Filter, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type mockPRListStore struct {
	mu       sync.Mutex
	lists    map[model.ListKind][]model.PullRequest
	replaces map[model.ListKind]int
	err      error
}

func newMockPRListStore() *mockPRListStore {
	return &mockPRListStore{
		lists:    map[model.ListKind][]model.PullRequest{},
		replaces: map[model.ListKind]int{},
	}
}

func (m *mockPRListStore) ReplaceList(_ context.Context, kind model.ListKind, prs []model.PullRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.lists[kind] = prs
	m.replaces[kind]++
	return nil
}

func (m *mockPRListStore) List(_ context.Context, kind model.ListKind) ([]model.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists[kind], nil
}

type mockNotifier struct {
	mu      sync.Mutex
	batches [][]model.NotificationIntent
	err     error
}

func (m *mockNotifier) Notify(_ context.Context, intents []model.NotificationIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, intents)
	return m.err
}

type mockFilterStore struct {
	settings model.FilterSettings
	sets     int
}

func (m *mockFilterStore) GetFilters(_ context.Context) (model.FilterSettings, error) {
	return m.settings, nil
}

func (m *mockFilterStore) SetFilters(_ context.Context, settings model.FilterSettings) error {
	m.settings = settings
	m.sets++
	return nil
}

// --- Fixtures ---

func node(owner, repo string, number int, checks ...model.CheckContext) model.PRNode {
	return model.PRNode{
		ID:                  model.Identity{Owner: owner, Repo: repo, Number: number},
		Title:               "PR " + repo,
		URL:                 "https://github.com/" + owner + "/" + repo + "/pull/1",
		State:               model.PRStateOpen,
		Mergeable:           model.MergeableMergeable,
		Checks:              checks,
		ChecksDeclaredTotal: len(checks),
	}
}

func pr(number int, status model.CIStatus) model.PullRequest {
	return model.PullRequest{
		ID:       model.Identity{Owner: "acme", Repo: "api", Number: number},
		Title:    "Change",
		URL:      "https://github.com/acme/api/pull/1",
		State:    model.PRStateOpen,
		CIStatus: status,
	}
}

func passed(name string) model.CheckResult {
	return model.CheckResult{Name: name, Status: model.CheckStatePassed}
}

func failed(name string) model.CheckResult {
	return model.CheckResult{Name: name, Status: model.CheckStateFailed}
}

func pending(name string) model.CheckResult {
	return model.CheckResult{Name: name, Status: model.CheckStatePending}
}

func completedRun(name, conclusion string) model.CheckRunContext {
	return model.CheckRunContext{Name: name, Status: "COMPLETED", Conclusion: conclusion}
}
