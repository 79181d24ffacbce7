package eventbridge

import (
	"testing"
)

func TestRouterBuffersAndFlushes(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(4))
	first := Event{EventID: "evt-1", ThreadID: "alpha", Type: TypeReasoning}
	second := Event{EventID: "evt-2", ThreadID: "alpha", Type: TypeTool}
	router.Route(first)
	router.Route(second)
	sub := router.Subscribe("alpha")
	defer sub.Close()
	got1 := <-sub.Events
	if got1.EventID != first.EventID {
		t.Fatalf("expected first buffered event, got %s", got1.EventID)
	}
	got2 := <-sub.Events
	if got2.EventID != second.EventID {
		t.Fatalf("expected second buffered event, got %s", got2.EventID)
	}
}

func TestRouterBacklogKeepsOtherThreads(t *testing.T) {
	router := NewRouter()
	router.Route(Event{EventID: "a-1", ThreadID: "alpha", Type: TypeMessage})
	router.Route(Event{EventID: "b-1", ThreadID: "beta", Type: TypeMessage})

	alpha := router.Subscribe("alpha")
	defer alpha.Close()
	if got := <-alpha.Events; got.EventID != "a-1" {
		t.Fatalf("expected a-1, got %s", got.EventID)
	}
	select {
	case got := <-alpha.Events:
		t.Fatalf("unexpected event for alpha: %s", got.EventID)
	default:
	}

	all := router.Subscribe(AllThreads)
	defer all.Close()
	if got := <-all.Events; got.EventID != "b-1" {
		t.Fatalf("expected remaining backlog b-1, got %s", got.EventID)
	}
}

func TestRouterAllThreadsSubscriber(t *testing.T) {
	router := NewRouter()
	all := router.Subscribe(AllThreads)
	defer all.Close()
	alpha := router.Subscribe("alpha")
	defer alpha.Close()

	router.Route(Event{EventID: "a-1", ThreadID: "alpha", Type: TypeReasoning})
	router.Route(Event{EventID: "b-1", ThreadID: "beta", Type: TypeReasoning})

	if got := <-all.Events; got.EventID != "a-1" {
		t.Fatalf("expected a-1 first, got %s", got.EventID)
	}
	if got := <-all.Events; got.EventID != "b-1" {
		t.Fatalf("expected b-1 second, got %s", got.EventID)
	}
	if got := <-alpha.Events; got.EventID != "a-1" {
		t.Fatalf("expected alpha to see a-1, got %s", got.EventID)
	}
	select {
	case got := <-alpha.Events:
		t.Fatalf("alpha received other thread event %s", got.EventID)
	default:
	}
}

func TestRouterIgnoresEventsWithoutThread(t *testing.T) {
	router := NewRouter()
	all := router.Subscribe(AllThreads)
	defer all.Close()
	router.Route(Event{EventID: "x", Type: TypeNotice})
	select {
	case <-all.Events:
		t.Fatalf("expected thread-less event to be ignored")
	default:
	}
}

func TestRouterDedupeByEventID(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe("alpha")
	defer sub.Close()
	event := Event{EventID: "evt-1", ThreadID: "alpha", Type: TypeReasoning}
	router.Route(event)
	router.Route(event)
	select {
	case got := <-sub.Events:
		if got.EventID != event.EventID {
			t.Fatalf("unexpected event: %s", got.EventID)
		}
	default:
		t.Fatalf("expected first delivery")
	}
	select {
	case <-sub.Events:
		t.Fatalf("duplicate event delivered")
	default:
	}
}

func TestRouterDropsOldestPreferredEventOnOverflow(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe("alpha")
	defer sub.Close()
	oldest := Event{EventID: "evt-1", ThreadID: "alpha", Type: TypeNotice}
	critical := Event{EventID: "evt-2", ThreadID: "alpha", Type: TypeSessionEnd}
	router.Route(oldest)
	router.Route(critical)
	if got := <-sub.Events; got.EventID != critical.EventID {
		t.Fatalf("expected critical event to replace oldest, got %s", got.EventID)
	}
}

func TestRouterDropsIncomingNotice(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe("alpha")
	defer sub.Close()
	oldest := Event{EventID: "evt-1", ThreadID: "alpha", Type: TypeReasoning}
	notice := Event{EventID: "evt-2", ThreadID: "alpha", Type: TypeNotice}
	router.Route(oldest)
	router.Route(notice)
	if got := <-sub.Events; got.EventID != oldest.EventID {
		t.Fatalf("expected reasoning to survive, got %s", got.EventID)
	}
}

func TestRouterDropsIncomingWhenOldestCritical(t *testing.T) {
	router := NewRouter(RouterWithSubscriberCapacity(1))
	sub := router.Subscribe("alpha")
	defer sub.Close()
	oldest := Event{EventID: "evt-1", ThreadID: "alpha", Type: TypeError}
	droppable := Event{EventID: "evt-2", ThreadID: "alpha", Type: TypeMessage}
	router.Route(oldest)
	router.Route(droppable)
	if got := <-sub.Events; got.EventID != oldest.EventID {
		t.Fatalf("expected oldest critical event to remain, got %s", got.EventID)
	}
	select {
	case <-sub.Events:
		t.Fatalf("unexpected extra event")
	default:
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe("alpha")
	sub.Close()
	router.Route(Event{EventID: "evt-1", ThreadID: "alpha", Type: TypeMessage})
	if _, ok := <-sub.Events; ok {
		t.Fatalf("expected closed channel")
	}
}
