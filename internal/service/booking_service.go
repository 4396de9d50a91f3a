package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courtline/court-booking/internal/catalog"
	"github.com/courtline/court-booking/internal/domain"
	"github.com/courtline/court-booking/internal/events"
	"github.com/courtline/court-booking/internal/observability"
	"github.com/courtline/court-booking/internal/repository"
	"github.com/courtline/court-booking/pkg/util/errorutil"
)

// BookingMetrics receives reservation outcomes. *observability.Metrics satisfies it.
type BookingMetrics interface {
	RecordReservation(outcome string)
	RecordCacheLookup(hit bool)
}

// BookingService coordinates availability, reservation, listing and cancellation.
type BookingService struct {
	store      repository.Store
	cache      repository.AvailabilityCache
	registry   *UserRegistry
	dispatcher events.Dispatcher
	metrics    BookingMetrics
	logger     *zap.Logger
	location   *time.Location
	now        func() time.Time
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	Store      repository.Store
	Cache      repository.AvailabilityCache
	Registry   *UserRegistry
	Dispatcher events.Dispatcher
	Metrics    BookingMetrics
	Logger     *zap.Logger
	// Location defines the calendar day used for "today". Defaults to UTC.
	Location *time.Location
	Clock    func() time.Time
}

// ReservationInput describes a reservation request as received from a caller.
type ReservationInput struct {
	UserID      int64
	DisplayName string
	Username    *string
	CourtType   string
	Date        string
	TimeSlot    string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	svc := &BookingService{
		store:      deps.Store,
		cache:      deps.Cache,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		location:   deps.Location,
		now:        deps.Clock,
	}
	if svc.cache == nil {
		svc.cache = repository.NewAvailabilityCache(nil, 0)
	}
	if svc.registry == nil {
		svc.registry = NewUserRegistry()
	}
	if svc.metrics == nil {
		svc.metrics = (*observability.Metrics)(nil)
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.location == nil {
		svc.location = time.UTC
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// GetAvailability returns every catalog slot for the date with its booking state, in catalog order.
func (s *BookingService) GetAvailability(ctx context.Context, dateStr string) ([]domain.SlotView, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	// The generation is read before the store so a write committed in between
	// keeps this grid out of the cache.
	views, gen, hit, cacheErr := s.cache.Get(ctx, date)
	if cacheErr != nil {
		s.logger.Warn("availability cache read failed", zap.Error(cacheErr), zap.String("date", dateStr))
	}
	s.metrics.RecordCacheLookup(hit)
	if hit {
		return views, nil
	}

	bookings, err := s.store.Bookings().ListByDate(ctx, date)
	if err != nil {
		return nil, s.storageFailure("list bookings by date", err)
	}

	type cell struct {
		court domain.CourtType
		slot  string
	}
	taken := make(map[cell]domain.SlotBooking, len(bookings))
	for _, b := range bookings {
		taken[cell{b.CourtType, b.TimeSlot}] = b
	}

	slots := catalog.EnumerateSlots(date)
	views = make([]domain.SlotView, 0, len(slots))
	for _, slot := range slots {
		view := domain.SlotView{
			CourtType:   slot.CourtType,
			Date:        slot.Date,
			TimeSlot:    slot.TimeSlot,
			IsAvailable: true,
		}
		if b, ok := taken[cell{slot.CourtType, slot.TimeSlot}]; ok {
			name, id := b.BookedBy, b.ID
			view.IsAvailable = false
			view.BookedBy = &name
			view.BookingID = &id
		}
		views = append(views, view)
	}

	if cacheErr == nil {
		if err := s.cache.Set(ctx, date, gen, views); err != nil {
			s.logger.Warn("availability cache write failed", zap.Error(err), zap.String("date", dateStr))
		}
	}
	return views, nil
}

// CreateReservation registers the user and books the slot in one transaction.
// Conflicts are detected by the store's unique constraints, never by a prior read.
func (s *BookingService) CreateReservation(ctx context.Context, input ReservationInput) (*domain.Booking, error) {
	court, date, timeSlot, err := s.validateReservation(input)
	if err != nil {
		s.metrics.RecordReservation(observability.OutcomeInvalid)
		return nil, err
	}

	var booking *domain.Booking
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := s.registry.Register(ctx, tx.Users(), input.UserID, input.DisplayName, input.Username); err != nil {
			return err
		}
		created, err := tx.Bookings().Insert(ctx, input.UserID, court, date, timeSlot)
		if err != nil {
			return err
		}
		booking = created
		return nil
	})

	fields := []zap.Field{
		zap.Int64("user_id", input.UserID),
		zap.String("court_type", string(court)),
		zap.String("date", date.Format(domain.DateLayout)),
		zap.String("time_slot", timeSlot),
	}
	switch {
	case errors.Is(err, repository.ErrUserDayConflict):
		s.metrics.RecordReservation(observability.OutcomeAlreadyBookedToday)
		s.logger.Info("reservation rejected: user already booked this day", fields...)
		return nil, errorutil.NewAlreadyBookedToday(s.existingBookingDetails(ctx, input.UserID, date))
	case errors.Is(err, repository.ErrSlotConflict):
		s.metrics.RecordReservation(observability.OutcomeSlotTaken)
		s.logger.Info("reservation rejected: slot taken", fields...)
		return nil, errorutil.NewSlotTaken(s.slotHolderDetails(ctx, court, date, timeSlot))
	case err != nil:
		s.metrics.RecordReservation(observability.OutcomeFailed)
		return nil, s.storageFailure("create reservation", err)
	}

	s.metrics.RecordReservation(observability.OutcomeCreated)
	s.logger.Info("reservation created", append(fields, zap.Int64("booking_id", booking.ID))...)
	s.invalidate(ctx, booking.Date)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingCreated,
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Payload:   events.NewBookingPayload(booking, NormalizeDisplayName(input.DisplayName)),
	})
	return booking, nil
}

// ListMyBookings returns the user's bookings dated today or later, ordered by date then slot.
// An unknown user simply has no bookings.
func (s *BookingService) ListMyBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	today := domain.DateOf(s.now().In(s.location))
	bookings, err := s.store.Bookings().ListFuture(ctx, userID, today)
	if err != nil {
		return nil, s.storageFailure("list bookings", err)
	}
	return bookings, nil
}

// CancelReservation deletes the booking if it belongs to userID.
// A missing booking, a booking owned by someone else and an id that can never
// exist all yield NOT_FOUND.
func (s *BookingService) CancelReservation(ctx context.Context, bookingID, userID int64) error {
	removed, err := s.store.Bookings().Delete(ctx, bookingID, userID)
	if err != nil {
		s.metrics.RecordReservation(observability.OutcomeFailed)
		return s.storageFailure("cancel reservation", err)
	}
	if removed == nil {
		s.metrics.RecordReservation(observability.OutcomeCancelNotFound)
		return errorutil.NewNotFound("booking", map[string]any{"booking_id": bookingID})
	}

	s.metrics.RecordReservation(observability.OutcomeCancelled)
	s.logger.Info("reservation cancelled",
		zap.Int64("booking_id", removed.ID),
		zap.Int64("user_id", userID),
		zap.String("date", removed.Date.Format(domain.DateLayout)))
	s.invalidate(ctx, removed.Date)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventBookingCancelled,
		BookingID: removed.ID,
		UserID:    removed.UserID,
		Payload:   events.NewBookingPayload(removed, ""),
	})
	return nil
}

func (s *BookingService) validateReservation(input ReservationInput) (domain.CourtType, time.Time, string, error) {
	details := map[string]any{}
	if input.UserID <= 0 {
		details["user_id"] = "must be a positive integer"
	}
	court, err := domain.ParseCourtType(input.CourtType)
	if err != nil {
		details["court_type"] = "must be one of rubber, hard"
	}
	date, err := domain.ParseDate(input.Date)
	if err != nil {
		details["date"] = "must be a calendar date in YYYY-MM-DD format"
	}
	timeSlot := strings.TrimSpace(input.TimeSlot)
	if !catalog.IsValidTimeSlot(timeSlot) {
		details["time_slot"] = "must be one of the hourly slots between 06:00 and 24:00"
	}
	if len(details) > 0 {
		return "", time.Time{}, "", errorutil.NewInvalidInput("invalid reservation request", details)
	}
	return court, date, timeSlot, nil
}

// existingBookingDetails describes the caller's own booking for the day. Best effort.
func (s *BookingService) existingBookingDetails(ctx context.Context, userID int64, date time.Time) map[string]any {
	details := map[string]any{"date": date.Format(domain.DateLayout)}
	existing, err := s.store.Bookings().FindByUserAndDate(ctx, userID, date)
	if err != nil || existing == nil {
		return details
	}
	details["booking_id"] = existing.ID
	details["court_type"] = existing.CourtType
	details["time_slot"] = existing.TimeSlot
	return details
}

// slotHolderDetails names who holds the slot, the same information the availability grid shows.
func (s *BookingService) slotHolderDetails(ctx context.Context, court domain.CourtType, date time.Time, timeSlot string) map[string]any {
	details := map[string]any{
		"court_type": court,
		"date":       date.Format(domain.DateLayout),
		"time_slot":  timeSlot,
	}
	holder, err := s.store.Bookings().FindBySlot(ctx, court, date, timeSlot)
	if err != nil || holder == nil {
		return details
	}
	user, err := s.store.Users().GetByID(ctx, holder.UserID)
	if err != nil || user == nil {
		return details
	}
	details["booked_by"] = user.DisplayName
	return details
}

func (s *BookingService) invalidate(ctx context.Context, date time.Time) {
	if err := s.cache.Invalidate(ctx, date); err != nil {
		s.logger.Warn("availability cache invalidation failed",
			zap.Error(err),
			zap.String("date", date.Format(domain.DateLayout)))
	}
}

func (s *BookingService) storageFailure(op string, err error) error {
	s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	return errorutil.NewServiceUnavailable(err)
}

func (s *BookingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("booking_id", event.BookingID),
			zap.Error(err))
	}
}

func parseDate(s string) (time.Time, error) {
	date, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, errorutil.NewInvalidInput("date must be in YYYY-MM-DD format", map[string]any{"date": s})
	}
	return date, nil
}
