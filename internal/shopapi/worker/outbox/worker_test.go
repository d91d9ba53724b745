package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmart/techstore/internal/shopapi/models/order"
	"github.com/mockmart/techstore/internal/shopapi/models/outbox"
)

type fakeOutboxRepo struct {
	pending []outbox.OutboxMessage

	deleted []int64
	retried map[int64]retryUpdate
}

type retryUpdate struct {
	retryCount  int
	lastError   string
	nextRetryAt time.Time
}

func newFakeOutboxRepo(messages ...outbox.OutboxMessage) *fakeOutboxRepo {
	return &fakeOutboxRepo{pending: messages, retried: map[int64]retryUpdate{}}
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.pending = append(r.pending, msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outbox.OutboxMessage, error) {
	if limit > len(r.pending) {
		limit = len(r.pending)
	}
	return r.pending[:limit], nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(_ context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	r.retried[id] = retryUpdate{retryCount: retryCount, lastError: lastError, nextRetryAt: nextRetryAt}
	return nil
}

type fakePublisher struct {
	err       error
	published []publishedMessage
}

type publishedMessage struct {
	routingKey  string
	contentType string
	body        []byte
}

func (p *fakePublisher) Publish(_, routingKey, contentType string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMessage{routingKey: routingKey, contentType: contentType, body: body})
	return nil
}

func testMessage(t *testing.T, id int64) outbox.OutboxMessage {
	t.Helper()

	msg, err := outbox.NewOrderCreated(&order.Order{ID: id, UserID: "user-1", Total: 999, Status: order.StatusPending})
	require.NoError(t, err)
	msg.ID = id
	return msg
}

func TestProcessMessages_PublishesAndDeletes(t *testing.T) {
	repo := newFakeOutboxRepo(testMessage(t, 1), testMessage(t, 2))
	publisher := &fakePublisher{}

	NewWorker(repo, publisher).ProcessMessages(context.Background())

	require.Len(t, publisher.published, 2)
	assert.Equal(t, outbox.QueueOrderEvents, publisher.published[0].routingKey)
	assert.Equal(t, "application/json", publisher.published[0].contentType)
	assert.Contains(t, string(publisher.published[0].body), "order.created")

	assert.Equal(t, []int64{1, 2}, repo.deleted)
	assert.Empty(t, repo.retried)
}

func TestProcessMessages_FailureSchedulesBackoff(t *testing.T) {
	repo := newFakeOutboxRepo(testMessage(t, 7))
	publisher := &fakePublisher{err: errors.New("broker unreachable")}
	worker := NewWorker(repo, publisher)

	before := time.Now()
	worker.ProcessMessages(context.Background())

	assert.Empty(t, repo.deleted)
	require.Contains(t, repo.retried, int64(7))

	update := repo.retried[7]
	assert.Equal(t, 1, update.retryCount)
	assert.Equal(t, "broker unreachable", update.lastError)
	// First retry backs off by 2^1 * retry_interval.
	assert.WithinDuration(t, before.Add(2*worker.retryInterval), update.nextRetryAt, 2*time.Second)
}

func TestProcessMessages_BackoffGrowsWithRetryCount(t *testing.T) {
	msg := testMessage(t, 9)
	msg.RetryCount = 3
	repo := newFakeOutboxRepo(msg)
	publisher := &fakePublisher{err: errors.New("still down")}
	worker := NewWorker(repo, publisher)

	before := time.Now()
	worker.ProcessMessages(context.Background())

	update := repo.retried[9]
	assert.Equal(t, 4, update.retryCount)
	assert.WithinDuration(t, before.Add(16*worker.retryInterval), update.nextRetryAt, 2*time.Second)
}

func TestProcessMessages_EmptyOutboxIsANoop(t *testing.T) {
	repo := newFakeOutboxRepo()
	publisher := &fakePublisher{}

	NewWorker(repo, publisher).ProcessMessages(context.Background())

	assert.Empty(t, publisher.published)
	assert.Empty(t, repo.deleted)
}

func TestStop_EndsTheLoop(t *testing.T) {
	repo := newFakeOutboxRepo()
	worker := NewWorker(repo, &fakePublisher{})

	done := make(chan struct{})
	go func() {
		worker.Start(context.Background())
		close(done)
	}()

	worker.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
