package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"

	"airline_ops/internal/inventory"
	"airline_ops/internal/metrics"
	"airline_ops/internal/models"
	"airline_ops/internal/repository"
	"airline_ops/internal/schedule"

	"github.com/google/uuid"
)

// Статусы, в которых рейс ещё можно бронировать.
func bookable(status models.FlightStatus) bool {
	return status == models.StatusScheduled || status == models.StatusDelayed
}

type BookingService struct {
	flightRepo  *repository.FlightRepository
	bookingRepo *repository.BookingRepository
	inventory   *inventory.Inventory
	clock       schedule.Clock
	logger      *log.Logger
}

func NewBookingService(
	flightRepo *repository.FlightRepository,
	bookingRepo *repository.BookingRepository,
	inv *inventory.Inventory,
	clock schedule.Clock,
	logger *log.Logger,
) *BookingService {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = schedule.SystemClock{}
	}

	return &BookingService{
		flightRepo:  flightRepo,
		bookingRepo: bookingRepo,
		inventory:   inv,
		clock:       clock,
		logger:      logger,
	}
}

// CreateItinerary бронирует места по всем сегментам маршрута.
// Всё или ничего: провал на любом сегменте откатывает уже забронированные.
func (s *BookingService) CreateItinerary(ctx context.Context, req *models.ItineraryRequest) (*models.Itinerary, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", models.ErrValidation)
	}
	if len(req.Legs) == 0 {
		return nil, fmt.Errorf("%w: itinerary must contain at least one leg", models.ErrValidation)
	}
	if strings.TrimSpace(req.ContactEmail) == "" || !strings.Contains(req.ContactEmail, "@") {
		return nil, fmt.Errorf("%w: contact_email is invalid", models.ErrValidation)
	}

	seen := make(map[uuid.UUID]struct{}, len(req.Legs))
	for _, leg := range req.Legs {
		if _, ok := seen[leg.FlightID]; ok {
			return nil, fmt.Errorf("%w: flight %s listed twice in itinerary", models.ErrValidation, leg.FlightID)
		}
		seen[leg.FlightID] = struct{}{}
	}

	now := s.clock.Now()
	itineraryID := uuid.New()

	bookings := make([]*models.Booking, 0, len(req.Legs))

	// Откат сегментов, забронированных до точки провала.
	rollback := func() {
		for _, b := range bookings {
			if err := s.inventory.Release(ctx, b); err != nil {
				s.logger.Printf("rollback booking %s: %v", b.ID, err)
			}
		}
	}

	totalSeats := 0
	for _, leg := range req.Legs {
		flight, err := s.flightRepo.GetByID(ctx, leg.FlightID)
		if err != nil {
			rollback()
			return nil, err
		}
		if !bookable(flight.Status) {
			rollback()
			return nil, fmt.Errorf("%w: flight %s is %s and cannot be booked", models.ErrValidation, flight.ID, flight.Status)
		}
		if !flight.Schedule.DepartureAt.After(now) {
			rollback()
			return nil, fmt.Errorf("%w: flight %s has already departed", models.ErrValidation, flight.ID)
		}

		assignments := make([]inventory.SeatAssignment, 0, len(leg.Seats))
		for _, seat := range leg.Seats {
			assignments = append(assignments, inventory.SeatAssignment{
				SeatID:    seat.SeatID,
				FirstName: seat.FirstName,
				LastName:  seat.LastName,
			})
		}

		booking, err := s.inventory.Book(ctx, leg.FlightID, assignments)
		if err != nil {
			rollback()
			if errors.Is(err, models.ErrConflict) {
				metrics.IncBookingConflict()
			}
			return nil, err
		}

		booking.ItineraryID = itineraryID
		bookings = append(bookings, booking)
		totalSeats += len(booking.Seats)
	}

	itinerary := &models.Itinerary{
		ID:           itineraryID,
		Reference:    newReference(),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Bookings:     bookings,
		CreatedAt:    now,
	}

	if err := s.bookingRepo.CreateItinerary(ctx, itinerary); err != nil {
		rollback()
		return nil, fmt.Errorf("persist itinerary: %w", err)
	}

	metrics.IncBookingCreated()
	metrics.ObserveBookedSeats(totalSeats)

	return itinerary, nil
}

func (s *BookingService) GetItinerary(ctx context.Context, id uuid.UUID) (*models.Itinerary, error) {
	return s.bookingRepo.GetItinerary(ctx, id)
}

// CancelBooking освобождает места сегмента. Повторная отмена — no-op.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Cancelled {
		return booking, nil
	}

	if err := s.inventory.Release(ctx, booking); err != nil {
		return nil, fmt.Errorf("release seats: %w", err)
	}

	if err := s.bookingRepo.MarkBookingCancelled(ctx, id); err != nil {
		return nil, err
	}

	booking.Cancelled = true
	return booking, nil
}

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newReference — 6-символьный код брони без похожих символов (0/O, 1/I).
func newReference() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	for i := range b {
		b[i] = referenceAlphabet[int(b[i])%len(referenceAlphabet)]
	}
	return string(b[:])
}
