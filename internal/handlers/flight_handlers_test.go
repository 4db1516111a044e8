package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"airline_ops/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubFlightService struct {
	flight *models.Flight
	err    error
}

func (s *stubFlightService) ScheduleFlight(context.Context, *models.ScheduleFlightRequest) (*models.Flight, error) {
	return s.flight, s.err
}
func (s *stubFlightService) GetFlight(context.Context, uuid.UUID) (*models.Flight, error) {
	return s.flight, s.err
}
func (s *stubFlightService) Reschedule(context.Context, uuid.UUID, *models.RescheduleRequest) (*models.Flight, error) {
	return s.flight, s.err
}
func (s *stubFlightService) ChangeStatus(context.Context, uuid.UUID, string) (*models.Flight, error) {
	return s.flight, s.err
}
func (s *stubFlightService) UpdatePricing(context.Context, uuid.UUID, *models.PricingRequest) (*models.Flight, error) {
	return s.flight, s.err
}
func (s *stubFlightService) ReassignAircraft(context.Context, uuid.UUID, uuid.UUID) (*models.Flight, error) {
	return s.flight, s.err
}
func (s *stubFlightService) DeleteFlight(context.Context, uuid.UUID) error {
	return s.err
}

func stubFlight() *models.Flight {
	dep := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Flight{
		ID:         uuid.New(),
		IataNumber: "KL0835",
		IcaoNumber: "KLM0835",
		Status:     models.StatusScheduled,
		Schedule: &models.Schedule{
			DepartureAirport: &models.Airport{ID: uuid.New(), IataCode: "AMS", Timezone: "Europe/Amsterdam"},
			ArrivalAirport:   &models.Airport{ID: uuid.New(), IataCode: "ICN", Timezone: "Asia/Seoul"},
			DepartureLocal:   dep,
			ArrivalLocal:     dep.Add(11 * time.Hour),
			DepartureAt:      dep,
			ArrivalAt:        dep.Add(11 * time.Hour),
			Policy:           models.ThrowWhenAmbiguous,
		},
		Aircraft:      &models.Aircraft{ID: uuid.New(), Model: "777", Registration: "PH-BVA"},
		EconomyPrice:  models.Money{Amount: 45000, Currency: "EUR"},
		BusinessPrice: models.Money{Amount: 210000, Currency: "EUR"},
	}
}

func newRouter(svc FlightService) http.Handler {
	r := chi.NewRouter()
	fh := NewFlightHandler(svc, nil, 0)
	r.Post("/api/flights", fh.ScheduleFlight)
	r.Get("/api/flights/{id}", fh.GetFlight)
	r.Post("/api/flights/{id}/status", fh.ChangeStatus)
	r.Delete("/api/flights/{id}", fh.DeleteFlight)
	return r
}

func TestScheduleFlight_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", fmt.Errorf("%w: bad schedule", models.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: airport XXX", models.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: seat taken", models.ErrConflict), http.StatusConflict},
		{"failure", fmt.Errorf("%w: tz database broken", models.ErrFailure), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(&stubFlightService{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/flights", strings.NewReader(`{"iata_number":"KL0835"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.code, rec.Code)
			require.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestScheduleFlight_Created(t *testing.T) {
	f := stubFlight()
	router := newRouter(&stubFlightService{flight: f})

	req := httptest.NewRequest(http.MethodPost, "/api/flights", strings.NewReader(`{"iata_number":"KL0835"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), f.ID.String())
	require.Contains(t, rec.Body.String(), `"status":"scheduled"`)
}

func TestScheduleFlight_RejectsUnknownFieldsAndTrailingJSON(t *testing.T) {
	router := newRouter(&stubFlightService{flight: stubFlight()})

	req := httptest.NewRequest(http.MethodPost, "/api/flights", strings.NewReader(`{"bogus":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/flights", strings.NewReader(`{"iata_number":"KL0835"}{}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFlight_BadID(t *testing.T) {
	router := newRouter(&stubFlightService{flight: stubFlight()})

	req := httptest.NewRequest(http.MethodGet, "/api/flights/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFlight_NoContent(t *testing.T) {
	router := newRouter(&stubFlightService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/flights/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
