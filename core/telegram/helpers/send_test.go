package helpers

import (
	"context"
	"sync"
	"testing"
	"time"

	"evernotebot/core/telegram/sender"
)

func TestDispatchRunsSyncWithoutDispatcher(t *testing.T) {
	SetDispatcher(nil)

	ran := false
	err := Dispatch(context.Background(), "send.text", "sendMessage", func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !ran {
		t.Fatal("job did not run synchronously")
	}
}

func TestDispatchEnqueuesOnDispatcher(t *testing.T) {
	d := sender.NewDispatcher(sender.Options{QueueSize: 4, Workers: 1})
	SetDispatcher(d)
	defer func() {
		SetDispatcher(nil)
		d.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	err := Dispatch(context.Background(), "send.text", "sendMessage", func() error {
		wg.Done()
		return nil
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed by the dispatcher")
	}
}

func TestDispatchFallsBackWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	d := sender.NewDispatcher(sender.Options{QueueSize: 1, Workers: 1})
	SetDispatcher(d)
	defer func() {
		SetDispatcher(nil)
		close(block)
		d.Close()
	}()

	// Occupy the single worker, then fill the one-slot queue.
	_ = Dispatch(context.Background(), "send.text", "sendMessage", func() error {
		<-block
		return nil
	})

	fellBack := false
	for i := 0; i < 16 && !fellBack; i++ {
		err := Dispatch(context.Background(), "send.text", "sendMessage", func() error {
			fellBack = true
			return nil
		})
		if err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	if !fellBack {
		t.Fatal("saturated queue never fell back to a synchronous send")
	}
}
