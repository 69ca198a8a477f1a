package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

type recordingNotifier struct {
	got [][]model.NotificationIntent
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, intents []model.NotificationIntent) error {
	r.got = append(r.got, intents)
	return r.err
}

type mockNotificationStore struct {
	recorded []model.NotificationIntent
	err      error
}

func (m *mockNotificationStore) Record(_ context.Context, intents []model.NotificationIntent) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, intents...)
	return nil
}

func (m *mockNotificationStore) ListRecent(_ context.Context, _ int) ([]model.NotificationRecord, error) {
	return nil, nil
}

var sampleIntents = []model.NotificationIntent{
	{
		Kind:  model.IntentCIFailed,
		PR:    model.Identity{Owner: "acme", Repo: "api", Number: 4},
		Title: "CI Failed",
		Body:  "acme/api#4: Bump deps",
		URL:   "https://github.com/acme/api/pull/4",
	},
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), sampleIntents))

	out := buf.String()
	assert.Contains(t, out, `msg="CI Failed"`)
	assert.Contains(t, out, "kind=ci_failed")
	assert.Contains(t, out, "pr=acme/api#4")
}

func TestHistoryNotifier(t *testing.T) {
	store := &mockNotificationStore{}

	require.NoError(t, NewHistoryNotifier(store).Notify(context.Background(), sampleIntents))
	assert.Equal(t, sampleIntents, store.recorded)

	store.err = errors.New("disk full")
	err := NewHistoryNotifier(store).Notify(context.Background(), sampleIntents)
	assert.ErrorContains(t, err, "disk full")
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	first := &recordingNotifier{err: errors.New("first failed")}
	second := &recordingNotifier{}
	third := &recordingNotifier{err: errors.New("third failed")}

	err := Multi{first, second, third}.Notify(context.Background(), sampleIntents)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.Contains(t, err.Error(), "third failed")
	assert.Len(t, first.got, 1)
	assert.Len(t, second.got, 1)
	assert.Len(t, third.got, 1)
}

func TestMulti_Empty(t *testing.T) {
	var m Multi
	assert.NoError(t, m.Notify(context.Background(), sampleIntents))

	var _ driven.Notifier = m
}
