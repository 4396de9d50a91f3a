package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/courtline/court-booking/internal/events"
)

const (
	sinkTimeout = 5 * time.Second
	// queueSize bounds events awaiting delivery; overflow is dropped and logged.
	queueSize = 256
)

// NotificationService forwards booking events to the configured sink.
// Handlers only enqueue, so a slow sink never delays the request that published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       events.Sink
	logger     *zap.Logger

	queue   chan events.Event
	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// NewNotificationService creates the service. A nil sink means events are only logged.
func NewNotificationService(dispatcher events.Dispatcher, sink events.Sink, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
		queue:      make(chan events.Event, queueSize),
		done:       make(chan struct{}),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
	n.dispatcher.Subscribe(events.EventBookingCancelled, n.handleBookingCancelled)
}

// Start launches the delivery goroutine. It is a no-op without a sink.
func (n *NotificationService) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sink == nil || n.started || n.closed {
		return
	}
	n.started = true
	go n.deliver()
}

// Stop stops accepting events, drains the queue and waits for delivery to finish.
func (n *NotificationService) Stop() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	started := n.started
	n.mu.Unlock()

	if started {
		<-n.done
	}
}

func (n *NotificationService) handleBookingCreated(_ context.Context, event events.Event) error {
	n.logger.Info("BookingCreated", zap.Int64("booking_id", event.BookingID), zap.Any("payload", event.Payload))
	n.enqueue(event)
	return nil
}

func (n *NotificationService) handleBookingCancelled(_ context.Context, event events.Event) error {
	n.logger.Info("BookingCancelled", zap.Int64("booking_id", event.BookingID), zap.Any("payload", event.Payload))
	n.enqueue(event)
	return nil
}

func (n *NotificationService) enqueue(event events.Event) {
	if n.sink == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- event:
	default:
		n.logger.Warn("event queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("booking_id", event.BookingID))
	}
}

func (n *NotificationService) deliver() {
	defer close(n.done)
	for event := range n.queue {
		n.forward(event)
	}
}

func (n *NotificationService) forward(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := n.sink.Send(ctx, event); err != nil {
		n.logger.Warn("forward event failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("booking_id", event.BookingID),
			zap.Error(err))
	}
}
