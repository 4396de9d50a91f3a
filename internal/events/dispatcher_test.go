package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var created, cancelled int
	d.Subscribe(EventBookingCreated, func(context.Context, Event) error {
		created++
		return nil
	})
	d.Subscribe(EventBookingCreated, func(context.Context, Event) error {
		created++
		return nil
	})
	d.Subscribe(EventBookingCancelled, func(context.Context, Event) error {
		cancelled++
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventBookingCreated, BookingID: 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if created != 2 || cancelled != 0 {
		t.Fatalf("created=%d cancelled=%d", created, cancelled)
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var reached bool
	d.Subscribe(EventBookingCancelled, func(context.Context, Event) error { return boom })
	d.Subscribe(EventBookingCancelled, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventBookingCancelled})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish err = %v, want boom", err)
	}
	if !reached {
		t.Fatal("second handler was not invoked")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	if err := NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventBookingCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
