package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func count(msgs []string, eventType string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, "event: "+eventType+"\n") {
			n++
		}
	}
	return n
}

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

	b.Publish(Event{Type: "session.updated", Data: map[string]string{"user_id": "alice"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: session.updated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"user_id":"alice"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishWorkEvent_ChangesThrottledPerWork(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishWorkEvent(KindUpdated, "w1", "content.md")
	b.PublishWorkEvent(KindSnapshot, "w1", "")
	b.PublishWorkEvent(KindUpdated, "w2", "plot.md")

	msgs := drain(ch)
	if got := count(msgs, "work.updated"); got != 2 {
		t.Errorf("work.updated = %d, want 2", got)
	}
	if got := count(msgs, "snapshot.created"); got != 1 {
		t.Errorf("snapshot.created = %d, want 1", got)
	}
	if got := count(msgs, "changes.updated"); got != 2 {
		t.Errorf("changes.updated = %d, want 2 (one per work)", got)
	}
	for _, m := range msgs {
		if strings.Contains(m, "work.updated") && strings.Contains(m, `"work_id":"w1"`) &&
			!strings.Contains(m, `"file_name":"content.md"`) {
			t.Errorf("file name missing in %q", m)
		}
	}
}

func TestPublishWorkEvent_CreatedAndDeleted(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishWorkEvent(KindCreated, "w1", "")
	b.PublishWorkEvent(KindDeleted, "w1", "")
	b.PublishWorkEvent("bogus", "w1", "")

	msgs := drain(ch)
	if count(msgs, "work.created") != 1 || count(msgs, "work.deleted") != 1 {
		t.Errorf("events = %q", msgs)
	}
	if got := count(msgs, "changes.updated"); got != 1 {
		t.Errorf("changes.updated = %d, want 1", got)
	}
	if len(msgs) != 3 {
		t.Errorf("unknown kind produced output: %q", msgs)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishWorkEvent(KindUpdated, "w9", "info.md")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: work.updated") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64 messages; the rest must be dropped, not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: "work.updated", Data: map[string]string{"work_id": "x"}})
	b.PublishWorkEvent(KindUpdated, "x", "content.md")
}
