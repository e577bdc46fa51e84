package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
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

	b.Publish(Event{Type: "slide.added", Data: map[string]string{"file": "intro-a.html"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: slide.added") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"file":"intro-a.html"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestNotify_LibraryThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change should trigger library.changed.
	b.Notify("workshop", "manifest.updated")
	// Second change immediately should NOT trigger another library.changed.
	b.Notify("workshop", "slides.changed")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	libraryCount := 0
	presentationCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "library.changed") {
				libraryCount++
			} else {
				presentationCount++
			}
		default:
			break loop
		}
	}

	if presentationCount != 2 {
		t.Errorf("presentation events = %d, want 2", presentationCount)
	}
	if libraryCount != 1 {
		t.Errorf("library events = %d, want 1 (throttled)", libraryCount)
	}
}

func TestNotifyPayload(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Notify("deep-dive", "tabs.changed")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: presentation.updated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"presentation":"deep-dive"`) {
			t.Errorf("missing presentation id in %q", s)
		}
		if !strings.Contains(s, `"reason":"tabs.changed"`) {
			t.Errorf("missing reason in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
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

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: "presentation.updated", Data: map[string]string{"presentation": "x"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: presentation.updated") {
		t.Errorf("handler body missing event, got %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("expected handler client to unsubscribe")
	}
}

func TestCloseAfterClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Errorf("expected subscriber channel closed")
	}
	if got := b.Subscribe(); got == nil {
		t.Fatalf("Subscribe after Close returned nil")
	} else if _, ok := <-got; ok {
		t.Errorf("expected closed channel after Close")
	}
}
