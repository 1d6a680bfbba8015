package eventbus

import "testing"

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[string]()
	a := bus.SubscribeBuffered(1)
	b := bus.SubscribeBuffered(1)
	bus.Publish("hello")
	if v := <-a; v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	if v := <-b; v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.SubscribeBuffered(2)
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	if got := bus.Dropped(); got != 3 {
		t.Fatalf("expected 3 dropped got %d", got)
	}
	if v := <-ch; v != 0 {
		t.Fatalf("expected first event 0 got %d", v)
	}
}

func TestTypedBusNegativeBuffer(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.SubscribeBuffered(-1)
	if cap(ch) != 0 {
		t.Fatalf("expected unbuffered channel got cap %d", cap(ch))
	}
	bus.Publish(1)
	if got := bus.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped got %d", got)
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.SubscribeBuffered(1)
	ch2 := bus.SubscribeBuffered(1)
	bus.Close()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	// publishing after close is a no-op
	bus.Publish(1)
	if _, ok := <-bus.SubscribeBuffered(1); ok {
		t.Fatalf("expected subscription after close to be closed")
	}
}
