package events

import (
	"sync"
	"testing"
	"time"
)

func TestDeliveryOrderFromSingleProducer(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	var got []Observation
	received := make(chan struct{}, 100)

	bus.Subscribe(TopicProviderSeen, func(e Observation) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		received <- struct{}{}
	})

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		bus.Publish(TopicProviderSeen, Observation{
			Domain:     "idp.example.com",
			ObservedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	for i := 0; i < 100; i++ {
		select {
		case <-received:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d events", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 100 {
		t.Fatalf("delivered %d events, want 100", len(got))
	}
	for i, e := range got {
		want := base.Add(time.Duration(i) * time.Second)
		if !e.ObservedAt.Equal(want) {
			t.Fatalf("event %d out of order: got %v, want %v", i, e.ObservedAt, want)
		}
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	received := make(chan Observation, 2)
	bus.Subscribe(TopicProviderSeen, func(e Observation) {
		if e.Domain == "bad.example.com" {
			panic("handler bug")
		}
		received <- e
	})

	bus.Publish(TopicProviderSeen, Observation{Domain: "bad.example.com", ObservedAt: time.Now()})
	bus.Publish(TopicProviderSeen, Observation{Domain: "good.example.com", ObservedAt: time.Now()})

	select {
	case e := <-received:
		if e.Domain != "good.example.com" {
			t.Errorf("got %q, want good.example.com", e.Domain)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("subscription died after handler panic")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	count := 0
	sub := bus.Subscribe(TopicProviderSeen, func(Observation) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(TopicProviderSeen, Observation{Domain: "a.example.com"})
	sub.Unsubscribe()

	before := func() int { mu.Lock(); defer mu.Unlock(); return count }()

	bus.Publish(TopicProviderSeen, Observation{Domain: "b.example.com"})
	time.Sleep(50 * time.Millisecond)

	after := func() int { mu.Lock(); defer mu.Unlock(); return count }()
	if after != before {
		t.Errorf("received %d events after Unsubscribe, want 0", after-before)
	}
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(TopicProviderSeen, func(Observation) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		bus.Publish(TopicProviderSeen, Observation{Domain: "a.example.com"})
	}

	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 20 {
		t.Errorf("handled %d events before Close returned, want 20", count)
	}
}

func TestSubscribeAfterCloseIsInert(t *testing.T) {
	bus := NewBus()
	bus.Close()

	sub := bus.Subscribe(TopicProviderSeen, func(Observation) {
		t.Error("handler fired on closed bus")
	})
	bus.Publish(TopicProviderSeen, Observation{Domain: "a.example.com"})
	sub.Unsubscribe() // must not hang

	if sub.ID() == "" {
		t.Error("subscription should still carry an ID")
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	other := make(chan Observation, 1)
	bus.Subscribe("other.topic", func(e Observation) { other <- e })

	bus.Publish(TopicProviderSeen, Observation{Domain: "a.example.com"})

	select {
	case e := <-other:
		t.Errorf("subscription on other.topic received %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}
