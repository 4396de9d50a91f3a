package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/courtline/court-booking/internal/api/dto"
	"github.com/courtline/court-booking/internal/auth"
	"github.com/courtline/court-booking/internal/domain"
	"github.com/courtline/court-booking/internal/service"
	apperrors "github.com/courtline/court-booking/pkg/util/errorutil"
)

// BookingService is the subset of service.BookingService used over HTTP.
type BookingService interface {
	GetAvailability(ctx context.Context, date string) ([]domain.SlotView, error)
	CreateReservation(ctx context.Context, input service.ReservationInput) (*domain.Booking, error)
	ListMyBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	CancelReservation(ctx context.Context, bookingID, userID int64) error
}

// BookingsHandler exposes availability and reservation endpoints.
type BookingsHandler struct {
	bookings  BookingService
	validator *dto.Validator
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookings BookingService, validator *dto.Validator) *BookingsHandler {
	return &BookingsHandler{bookings: bookings, validator: validator}
}

// Slots handles GET /api/slots.
func (h *BookingsHandler) Slots(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return apperrors.NewInvalidInput("date query parameter is required", map[string]any{"date": "is required"})
	}

	var court domain.CourtType
	if raw := c.Query("court_type"); raw != "" {
		parsed, err := domain.ParseCourtType(raw)
		if err != nil {
			return apperrors.NewInvalidInput("unknown court type", map[string]any{"court_type": raw})
		}
		court = parsed
	}

	views, err := h.bookings.GetAvailability(c.UserContext(), date)
	if err != nil {
		return err
	}
	if court != "" {
		filtered := views[:0:0]
		for _, v := range views {
			if v.CourtType == court {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	return c.JSON(fiber.Map{"data": dto.NewSlotList(views)})
}

// Book handles POST /api/book.
func (h *BookingsHandler) Book(c *fiber.Ctx) error {
	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		if req.UserID != 0 && req.UserID != principal.UserID {
			return apperrors.NewUnauthorized("user_id does not match identity token")
		}
		req.UserID = principal.UserID
		if strings.TrimSpace(req.FirstName) == "" {
			req.FirstName = principal.FirstName
		}
		if req.Username == nil && principal.Username != "" {
			req.Username = &principal.Username
		}
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	booking, err := h.bookings.CreateReservation(c.UserContext(), service.ReservationInput{
		UserID:      req.UserID,
		DisplayName: req.FirstName,
		Username:    req.Username,
		CourtType:   req.CourtType,
		Date:        req.Date,
		TimeSlot:    req.TimeSlot,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewBookingResponse(*booking),
		"message": "Booking created",
	})
}

// MyBookings handles GET /api/my-bookings.
func (h *BookingsHandler) MyBookings(c *fiber.Ctx) error {
	userID, err := callerID(c, c.Query("user_id"))
	if err != nil {
		return err
	}

	bookings, err := h.bookings.ListMyBookings(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookingList(bookings)})
}

// Cancel handles DELETE /api/booking/:id.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	bookingID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewInvalidInput("booking id must be an integer", map[string]any{"id": c.Params("id")})
	}
	userID, err := callerID(c, c.Query("user_id"))
	if err != nil {
		return err
	}

	if err := h.bookings.CancelReservation(c.UserContext(), bookingID, userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    fiber.Map{"booking_id": bookingID},
		"message": "Booking cancelled",
	})
}

// callerID prefers the verified token identity and falls back to the explicit user_id parameter.
func callerID(c *fiber.Ctx, explicit string) (int64, error) {
	principal, hasPrincipal := auth.PrincipalFromContext(c)
	if explicit == "" {
		if hasPrincipal {
			return principal.UserID, nil
		}
		return 0, apperrors.NewInvalidInput("user_id is required", map[string]any{"user_id": "is required"})
	}

	userID, err := strconv.ParseInt(explicit, 10, 64)
	if err != nil {
		return 0, apperrors.NewInvalidInput("user_id must be an integer", map[string]any{"user_id": explicit})
	}
	if hasPrincipal && principal.UserID != userID {
		return 0, apperrors.NewUnauthorized("user_id does not match identity token")
	}
	return userID, nil
}
