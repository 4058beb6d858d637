package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/model"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/repository"

	"github.com/go-playground/assert/v2"
)

type fakeQueue struct {
	items      []string
	deadLetter []string
	popErr     error
}

func (q *fakeQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	if q.popErr != nil {
		return "", q.popErr
	}
	if len(q.items) == 0 {
		return "", ErrQueueEmpty
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

func (q *fakeQueue) Requeue(ctx context.Context, data string) error {
	q.items = append(q.items, data)
	return nil
}

func (q *fakeQueue) DeadLetter(ctx context.Context, data string) error {
	q.deadLetter = append(q.deadLetter, data)
	return nil
}

type fakeStore struct {
	saved    []string
	failures int
}

func (s *fakeStore) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("db down")
	}
	s.saved = append(s.saved, a.ID)
	return nil
}

func encode(t *testing.T, id string) string {
	t.Helper()
	data, err := repository.EncodeArchiveEntry(model.ArchiveEntry{Analysis: model.Analysis{ID: id}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func newTestWorker(q Queue, s Store) *Worker {
	w := NewWorker(q, s)
	w.RetryDelay = 0
	w.PopTimeout = time.Millisecond
	return w
}

func TestRun_SavesAll(t *testing.T) {
	q := &fakeQueue{items: []string{encode(t, "a"), encode(t, "b")}}
	s := &fakeStore{}

	stats, err := newTestWorker(q, s).Run(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, stats.Saved)
	assert.Equal(t, []string{"a", "b"}, s.saved)
	assert.Equal(t, 0, len(q.deadLetter))
}

func TestRun_RetriesThenSaves(t *testing.T) {
	q := &fakeQueue{items: []string{encode(t, "a")}}
	s := &fakeStore{failures: 2}

	stats, err := newTestWorker(q, s).Run(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, stats.Saved)
	assert.Equal(t, 2, stats.Requeued)
	assert.Equal(t, []string{"a"}, s.saved)
}

func TestRun_DeadLettersAfterMaxRetries(t *testing.T) {
	q := &fakeQueue{items: []string{encode(t, "a")}}
	s := &fakeStore{failures: 10}

	stats, err := newTestWorker(q, s).Run(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, stats.Saved)
	assert.Equal(t, DefaultMaxRetries-1, stats.Requeued)
	assert.Equal(t, 1, stats.DeadLettered)
	assert.Equal(t, 1, len(q.deadLetter))

	entry, err := repository.DecodeArchiveEntry(q.deadLetter[0])
	assert.Equal(t, nil, err)
	assert.Equal(t, DefaultMaxRetries, entry.Attempts)
}

func TestRun_MalformedEntryIsDeadLettered(t *testing.T) {
	q := &fakeQueue{items: []string{"not json", encode(t, "b")}}
	s := &fakeStore{}

	stats, err := newTestWorker(q, s).Run(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, stats.Saved)
	assert.Equal(t, []string{"not json"}, q.deadLetter)
}

func TestRun_PopError(t *testing.T) {
	q := &fakeQueue{popErr: errors.New("connection refused")}

	_, err := newTestWorker(q, &fakeStore{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected pop error to stop the worker")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestWorker(&fakeQueue{items: []string{encode(t, "a")}}, &fakeStore{}).Run(ctx)

	assert.Equal(t, context.Canceled, err)
}
