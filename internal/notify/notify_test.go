package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/famdo/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	l := NewListeners(testLogger())
	var calls []string

	unsubA := l.Subscribe(func(doc *model.Document) { calls = append(calls, "a:"+doc.FamilyName) })
	l.Subscribe(func(doc *model.Document) { calls = append(calls, "b:"+doc.FamilyName) })

	doc := model.NewDocument()
	l.Publish(doc)
	if len(calls) != 2 || calls[0] != "a:My Family" || calls[1] != "b:My Family" {
		t.Fatalf("calls = %v", calls)
	}

	unsubA()
	unsubA()
	calls = nil
	l.Publish(doc)
	if len(calls) != 1 || calls[0] != "b:My Family" {
		t.Errorf("after unsubscribe calls = %v", calls)
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	l := NewListeners(testLogger())
	reached := false
	l.Subscribe(func(*model.Document) { panic("boom") })
	l.Subscribe(func(*model.Document) { reached = true })

	l.Publish(model.NewDocument())
	if !reached {
		t.Error("second listener was not called")
	}
}

func TestMultiAndRecorder(t *testing.T) {
	var a, b Recorder
	m := Multi{&a, nil, &b, NewLogEmitter(testLogger())}
	m.Emit(context.Background(), EventRewardClaimed, map[string]any{"reward_id": "r1"})

	for _, r := range []*Recorder{&a, &b} {
		events := r.Named(EventRewardClaimed)
		if len(events) != 1 {
			t.Fatalf("events = %d, want 1", len(events))
		}
		if events[0].Payload["reward_id"] != "r1" {
			t.Errorf("payload = %v", events[0].Payload)
		}
	}
}
