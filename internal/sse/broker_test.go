package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "shard.created", Data: map[string]string{"path": "poetry/1.json"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: shard.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"poetry/1.json"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishShardEvent_TotalsThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger totals.updated.
	b.PublishShardEvent("created", "poetry/1.json")
	// Second event immediately should NOT trigger another totals.updated.
	b.PublishShardEvent("updated", "poetry/2.json")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	totalsCount := 0
	shardCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "totals.updated") {
				totalsCount++
			} else {
				shardCount++
			}
		default:
			break loop
		}
	}

	if shardCount != 2 {
		t.Errorf("shard events = %d, want 2", shardCount)
	}
	if totalsCount != 1 {
		t.Errorf("totals events = %d, want 1 (throttled)", totalsCount)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(time.Second)
	b.Close()
	b.Close()
	if b.ClientCount() != 0 {
		t.Error("closed broker should report 0 clients")
	}
}
