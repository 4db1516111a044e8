package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"airline_ops/internal/cache"
	"airline_ops/internal/metrics"
	"airline_ops/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// FlightService описывает методы сервисного слоя, которые нужны хендлерам.
type FlightService interface {
	ScheduleFlight(ctx context.Context, req *models.ScheduleFlightRequest) (*models.Flight, error)
	GetFlight(ctx context.Context, id uuid.UUID) (*models.Flight, error)
	Reschedule(ctx context.Context, id uuid.UUID, req *models.RescheduleRequest) (*models.Flight, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*models.Flight, error)
	UpdatePricing(ctx context.Context, id uuid.UUID, req *models.PricingRequest) (*models.Flight, error)
	ReassignAircraft(ctx context.Context, id, aircraftID uuid.UUID) (*models.Flight, error)
	DeleteFlight(ctx context.Context, id uuid.UUID) error
}

type FlightHandler struct {
	service FlightService
	cache   cache.Cache
	ttl     time.Duration
}

func NewFlightHandler(service FlightService, cache cache.Cache, ttl time.Duration) *FlightHandler {
	return &FlightHandler{
		service: service,
		cache:   cache,
		ttl:     ttl,
	}
}

// POST /api/flights
// 201: FlightResponse
// 400: invalid input / unresolvable schedule
// 404: unknown airport or aircraft
func (h *FlightHandler) ScheduleFlight(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleFlightRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	flight, err := h.service.ScheduleFlight(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.NewFlightResponse(flight))
}

// GET /api/flights/{id}
func (h *FlightHandler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := flightID(w, r)
	if !ok {
		return
	}

	// 1) cache lookup
	if h.cache != nil {
		key := cache.FlightKey(id)
		if b, hit, err := h.cache.Get(r.Context(), key); err == nil && hit {
			metrics.IncRedisHit()
			w.Header().Set("X-Cache", "HIT")
			writeRawJSON(w, http.StatusOK, b)
			return
		}
	}

	// 2) DB via service
	flight, err := h.service.GetFlight(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, _ := json.Marshal(models.NewFlightResponse(flight))

	// 3) cache store
	if h.cache != nil {
		_ = h.cache.Set(r.Context(), cache.FlightKey(id), b, h.ttl)
	}

	metrics.IncRedisMiss()
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, b)
}

// POST /api/flights/{id}/reschedule
func (h *FlightHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := flightID(w, r)
	if !ok {
		return
	}

	var req models.RescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	flight, err := h.service.Reschedule(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.dropCached(r.Context(), id)
	writeJSON(w, http.StatusOK, models.NewFlightResponse(flight))
}

// POST /api/flights/{id}/status
func (h *FlightHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := flightID(w, r)
	if !ok {
		return
	}

	var req models.ChangeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	flight, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.dropCached(r.Context(), id)
	writeJSON(w, http.StatusOK, models.NewFlightResponse(flight))
}

// POST /api/flights/{id}/pricing
func (h *FlightHandler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	id, ok := flightID(w, r)
	if !ok {
		return
	}

	var req models.PricingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	flight, err := h.service.UpdatePricing(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.dropCached(r.Context(), id)
	writeJSON(w, http.StatusOK, models.NewFlightResponse(flight))
}

// POST /api/flights/{id}/aircraft
func (h *FlightHandler) ReassignAircraft(w http.ResponseWriter, r *http.Request) {
	id, ok := flightID(w, r)
	if !ok {
		return
	}

	var req models.ReassignAircraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	flight, err := h.service.ReassignAircraft(r.Context(), id, req.AircraftID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.dropCached(r.Context(), id)
	writeJSON(w, http.StatusOK, models.NewFlightResponse(flight))
}

// DELETE /api/flights/{id}
func (h *FlightHandler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := flightID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFlight(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.dropCached(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// Проекция рейса после мутации устаревает сразу, не ждём consumer-а.
func (h *FlightHandler) dropCached(ctx context.Context, id uuid.UUID) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Del(ctx, cache.FlightKey(id))
}

func flightID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// Запрещаем второй JSON-объект в body
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("only one JSON object is allowed")
	}

	return nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
