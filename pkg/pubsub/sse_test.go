package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event, ok := <-sub.Events():
		if !ok {
			t.Fatal("Subscription closed unexpectedly")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
		return Event{}
	}
}

func TestPublishDelivers(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	sub, err := p.Subscribe(context.Background(), TopicView)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	if err := p.Publish(TopicView, "toggled", ViewSummary{Nodes: 2, Links: 1, Loaded: true}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	event := receive(t, sub)
	if event.Topic != TopicView || event.Type != "toggled" {
		t.Errorf("Unexpected event: %+v", event)
	}

	var summary ViewSummary
	if err := json.Unmarshal(event.Data, &summary); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if summary.Nodes != 2 || summary.Links != 1 {
		t.Errorf("Unexpected payload: %+v", summary)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	viewSub, _ := p.Subscribe(context.Background(), TopicView)
	defer viewSub.Close()

	if err := p.Publish(TopicLoadStatus, "loading", LoadStatus{State: "loading"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case event := <-viewSub.Events():
		t.Errorf("View subscriber received foreign event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLateSubscriberGetsLastEvent(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	p.Publish(TopicLoadStatus, "loading", LoadStatus{State: "loading"})
	p.Publish(TopicLoadStatus, "ready", LoadStatus{State: "ready"})

	sub, err := p.Subscribe(context.Background(), TopicLoadStatus)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	// Only the most recent event is replayed
	event := receive(t, sub)
	if event.Type != "ready" {
		t.Errorf("Expected replay of ready, got %s", event.Type)
	}
	if event.Version != 2 {
		t.Errorf("Expected version 2, got %d", event.Version)
	}
}

func TestVersionsIncreasePerTopic(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	sub, _ := p.Subscribe(context.Background(), TopicView)
	defer sub.Close()

	p.Publish(TopicView, "loaded", ViewSummary{Loaded: true})
	p.Publish(TopicView, "toggled", ViewSummary{Loaded: true})

	first := receive(t, sub)
	second := receive(t, sub)
	if second.Version != first.Version+1 {
		t.Errorf("Expected consecutive versions, got %d then %d", first.Version, second.Version)
	}
}

func TestCloseEndsSubscription(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	sub, _ := p.Subscribe(context.Background(), TopicView)
	sub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("Expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed")
	}

	// Publishing after close must not panic or deliver
	if err := p.Publish(TopicView, "toggled", ViewSummary{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestContextCancelClosesSubscription(t *testing.T) {
	p := NewSSEPublisher()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := p.Subscribe(ctx, TopicView)
	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("Expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after cancel")
	}
}

func TestPublisherClose(t *testing.T) {
	p := NewSSEPublisher()

	sub, _ := p.Subscribe(context.Background(), TopicView)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("Expected closed channel after publisher close")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after publisher close")
	}

	if _, err := p.Subscribe(context.Background(), TopicView); err == nil {
		t.Error("Expected Subscribe to fail on closed publisher")
	}
	if err := p.Publish(TopicView, "toggled", ViewSummary{}); err == nil {
		t.Error("Expected Publish to fail on closed publisher")
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicView, Type: "toggled", Data: json.RawMessage(`{"nodes":1}`), Version: 7}

	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "data: ") {
		t.Errorf("Expected data: prefix, got %q", out)
	}
	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("Expected blank line terminator, got %q", out)
	}
	if !strings.Contains(out, `"version":7`) {
		t.Errorf("Expected version in payload, got %q", out)
	}
}
