package system

import (
	"context"
	"errors"
	"testing"
)

type recordingService struct {
	name   string
	failOn string
	events *[]string
}

func (r *recordingService) Name() string { return r.name }

func (r *recordingService) Start(context.Context) error {
	if r.failOn == "start" {
		return errors.New("boom")
	}
	*r.events = append(*r.events, "start:"+r.name)
	return nil
}

func (r *recordingService) Stop(context.Context) error {
	*r.events = append(*r.events, "stop:"+r.name)
	return nil
}

func TestManagerStartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordingService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestManagerRollsBackFailedStart(t *testing.T) {
	var events []string
	m := NewManager()
	m.Register(&recordingService{name: "ok", events: &events})
	m.Register(&recordingService{name: "bad", failOn: "start", events: &events})

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail")
	}
	if len(events) != 2 || events[1] != "stop:ok" {
		t.Fatalf("expected started services to be stopped, events = %v", events)
	}
}

func TestManagerRejectsDuplicates(t *testing.T) {
	m := NewManager()
	if err := m.Register(NoopService{ServiceName: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "x"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
