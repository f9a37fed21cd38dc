package sender

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})
	defer d.Close()

	var mu sync.Mutex
	done := 0
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := d.Enqueue(nil, "send.text", "sendMessage", func() error {
			defer wg.Done()
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	if done != 5 {
		t.Fatalf("expected 5 jobs executed, got %d", done)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	defer d.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = d.Enqueue(nil, "a", "", func() error {
		close(started)
		<-block
		return nil
	})
	<-started

	// fill the single queue slot, then the next enqueue must be rejected
	_ = d.Enqueue(nil, "b", "", func() error { return nil })
	var full bool
	for i := 0; i < 10; i++ {
		if err := d.Enqueue(nil, "c", "", func() error { return nil }); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	close(block)
	if !full {
		t.Fatal("expected ErrQueueFull")
	}
}

func TestDispatcherClosedRejectsEnqueue(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	d.Close()
	if err := d.Enqueue(nil, "a", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4, MaxRetries: 0, MaxDuration: time.Second})
	var wg sync.WaitGroup
	wg.Add(1)
	_ = d.Enqueue(nil, "a", "", func() error {
		defer wg.Done()
		return errors.New("boom")
	})
	wg.Wait()
	d.Close()
	if d.ErrorCount() != 1 {
		t.Fatalf("expected 1 failure, got %d", d.ErrorCount())
	}
}

func TestSanitizeErrorMessageRedactsToken(t *testing.T) {
	err := fmt.Errorf("telegram: Post https://api.telegram.org/bot12345:AAbbCCdd-ee_ff/sendMessage failed")
	got := sanitizeErrorMessage(err)
	if got != "telegram: Post https://api.telegram.org/bot<redacted>/sendMessage failed" {
		t.Fatalf("unexpected sanitized message: %s", got)
	}
}

func TestClassifyErrorUnknown(t *testing.T) {
	if kind := classifyError(errors.New("weird")); kind != "unknown" {
		t.Fatalf("expected unknown, got %s", kind)
	}
	if kind := classifyError(nil); kind != "" {
		t.Fatalf("expected empty, got %s", kind)
	}
}
