package handlers

import (
	"context"
	"net/http"

	"airline_ops/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BookingService interface {
	CreateItinerary(ctx context.Context, req *models.ItineraryRequest) (*models.Itinerary, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (*models.Itinerary, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type BookingHandler struct {
	service BookingService
}

func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// POST /api/itineraries
// 201: ItineraryResponse
// 400: invalid legs / flight not bookable
// 409: seat already taken or claimed concurrently
func (h *BookingHandler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var req models.ItineraryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	itinerary, err := h.service.CreateItinerary(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := models.NewItineraryResponse(itinerary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GET /api/itineraries/{id}
func (h *BookingHandler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid uuid")
		return
	}

	itinerary, err := h.service.GetItinerary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := models.NewItineraryResponse(itinerary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /api/bookings/{id}/cancel — идемпотентно.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid uuid")
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	seats := make([]models.BookedSeatResponse, 0, len(booking.Seats))
	for _, bs := range booking.Seats {
		seats = append(seats, models.BookedSeatResponse{
			SeatID:     bs.Seat.ID.String(),
			SeatNumber: bs.Seat.Number,
			Class:      string(bs.Seat.Class),
			Price:      bs.Seat.Price,
			FirstName:  bs.Passenger.FirstName,
			LastName:   bs.Passenger.LastName,
		})
	}

	writeJSON(w, http.StatusOK, models.BookingResponse{
		ID:        booking.ID.String(),
		FlightID:  booking.FlightID.String(),
		Cancelled: booking.Cancelled,
		Seats:     seats,
	})
}
