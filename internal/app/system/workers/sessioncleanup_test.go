package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeStorage struct {
	mu        sync.Mutex
	touched   []string
	removed   int64
	removeErr error
}

func (f *fakeStorage) Touch(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeStorage) RemoveIdle(context.Context, time.Duration) (int64, error) {
	return f.removed, f.removeErr
}

type fakeSessions struct {
	active  []string
	evicted int
	calls   int
}

func (f *fakeSessions) Active(time.Duration) []string { return f.active }
func (f *fakeSessions) EvictIdle(time.Duration) int {
	f.calls++
	return f.evicted
}

func TestCleanup_TouchesActiveThenSweeps(t *testing.T) {
	store := &fakeStorage{removed: 3}
	sess := &fakeSessions{active: []string{"a", "b"}, evicted: 2}
	w := NewSessionCleanup(store, sess, zap.NewNop(), time.Minute, time.Hour)

	w.cleanup()

	if len(store.touched) != 2 || store.touched[0] != "a" || store.touched[1] != "b" {
		t.Errorf("touched: got %v", store.touched)
	}
	if sess.calls != 1 {
		t.Errorf("EvictIdle calls: got %d, want 1", sess.calls)
	}
}

func TestCleanup_StorageErrorStillEvicts(t *testing.T) {
	store := &fakeStorage{removeErr: errors.New("db down")}
	sess := &fakeSessions{}
	w := NewSessionCleanup(store, sess, zap.NewNop(), time.Minute, time.Hour)

	w.cleanup()

	if sess.calls != 1 {
		t.Errorf("EvictIdle calls: got %d, want 1", sess.calls)
	}
}

func TestStartStop(t *testing.T) {
	w := NewSessionCleanup(&fakeStorage{}, &fakeSessions{}, zap.NewNop(), 10*time.Millisecond, time.Hour)
	w.Start()
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
