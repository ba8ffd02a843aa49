package worker_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"guestbook/internal/queue"
	"guestbook/internal/realtime"
	"guestbook/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockConsumer feeds batches from a channel and records acks.
type MockConsumer struct {
	batches chan []queue.Message

	mu        sync.Mutex
	acked     []string
	groups    []string
	destroyed []string
}

func NewMockConsumer() *MockConsumer {
	return &MockConsumer{batches: make(chan []queue.Message, 10)}
}

func (m *MockConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, group)
	return nil
}

func (m *MockConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case batch := <-m.batches:
		return batch, nil
	case <-time.After(block):
		return nil, nil
	}
}

func (m *MockConsumer) Ack(ctx context.Context, stream, group string, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, ids...)
	return nil
}

func (m *MockConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	return 0, nil
}

func (m *MockConsumer) DestroyGroup(ctx context.Context, stream, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = append(m.destroyed, group)
	return nil
}

func (m *MockConsumer) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

// recorder collects hub callbacks.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) onChange(table, event, affectedID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, table+"/"+event+"/"+affectedID)
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestHandleEvent_DispatchesToHub(t *testing.T) {
	hub := realtime.NewHub()
	rec := &recorder{}
	hub.Subscribe(queue.TableMessages, "", rec.onChange)
	handler := worker.NewHandler(hub)

	if err := handler.HandleEvent(context.Background(), queue.NewMessageEvent(queue.EventInsert, "m1")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if err := handler.HandleEvent(context.Background(), queue.NewReplyEvent(queue.EventInsert, "r1", "m1")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	calls := rec.Calls()
	if len(calls) != 1 || calls[0] != "messages/INSERT/m1" {
		t.Errorf("unexpected calls: %v", calls)
	}
}

func TestHandleEvent_RejectsUnknown(t *testing.T) {
	handler := worker.NewHandler(realtime.NewHub())

	err := handler.HandleEvent(context.Background(), queue.ChangeEvent{Table: "users", Event: queue.EventInsert})
	if err == nil {
		t.Error("expected error for unknown table")
	}
	err = handler.HandleEvent(context.Background(), queue.ChangeEvent{Table: queue.TableLikes, Event: "TRUNCATE"})
	if err == nil {
		t.Error("expected error for unknown event")
	}
}

func TestManager_DispatchesAndAcks(t *testing.T) {
	consumer := NewMockConsumer()
	hub := realtime.NewHub()
	rec := &recorder{}
	hub.Subscribe("", "", rec.onChange)

	cfg := worker.DefaultManagerConfig()
	cfg.BlockTimeout = 50 * time.Millisecond
	manager := worker.NewManager(consumer, worker.NewHandler(hub), cfg)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	consumer.batches <- []queue.Message{
		{ID: "1-0", Event: queue.NewMessageEvent(queue.EventInsert, "m1")},
		{ID: "2-0", Event: queue.ChangeEvent{Table: "bogus", Event: queue.EventInsert}},
		{ID: "3-0", Event: queue.NewLikeEvent("m1", true)},
	}

	waitFor(t, func() bool { return len(consumer.Acked()) == 3 })
	manager.Stop()

	calls := rec.Calls()
	want := []string{"messages/INSERT/m1", "likes/INSERT/m1"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
		}
	}

	// The per-instance group is created on start and dropped on stop
	if len(consumer.groups) != 1 || consumer.groups[0] != manager.Group() {
		t.Errorf("groups = %v, want [%s]", consumer.groups, manager.Group())
	}
	if len(consumer.destroyed) != 1 || consumer.destroyed[0] != manager.Group() {
		t.Errorf("destroyed = %v, want [%s]", consumer.destroyed, manager.Group())
	}
}

func TestManager_InstancesGetDistinctGroups(t *testing.T) {
	a := worker.NewManager(NewMockConsumer(), worker.NewHandler(realtime.NewHub()), worker.DefaultManagerConfig())
	b := worker.NewManager(NewMockConsumer(), worker.NewHandler(realtime.NewHub()), worker.DefaultManagerConfig())
	if a.Group() == b.Group() {
		t.Errorf("expected distinct groups, both got %s", a.Group())
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

// TestChangeStreamFanout checks that two instances both receive every change.
func TestChangeStreamFanout(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	publisher := queue.NewPublisher(client)

	var recorders []*recorder
	var managers []*worker.Manager
	for i := 0; i < 2; i++ {
		hub := realtime.NewHub()
		rec := &recorder{}
		hub.Subscribe(queue.TableMessages, queue.EventDelete, rec.onChange)

		cfg := worker.DefaultManagerConfig()
		cfg.BlockTimeout = 100 * time.Millisecond
		m := worker.NewManager(queue.NewConsumer(client), worker.NewHandler(hub), cfg)
		if err := m.Start(ctx); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		recorders = append(recorders, rec)
		managers = append(managers, m)
	}

	if _, err := publisher.Publish(ctx, queue.StreamChanges, queue.NewMessageEvent(queue.EventInsert, "m1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if _, err := publisher.Publish(ctx, queue.StreamChanges, queue.NewMessageEvent(queue.EventDelete, "m1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, rec := range recorders {
		waitFor(t, func() bool { return len(rec.Calls()) == 1 })
		if got := rec.Calls()[0]; got != "messages/DELETE/m1" {
			t.Errorf("got %s, want messages/DELETE/m1", got)
		}
	}

	for _, m := range managers {
		m.Stop()
	}

	groups, err := client.XInfoGroups(ctx, queue.StreamChanges).Result()
	if err != nil {
		t.Fatalf("XInfoGroups failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected groups to be destroyed, found %d", len(groups))
	}
}
