package handlers

import (
	"context"
	"net/http"
	"strings"

	"airline_ops/internal/models"

	"github.com/go-chi/chi/v5"
)

type AirportDirectory interface {
	GetByIata(ctx context.Context, iata string) (*models.Airport, error)
}

type AirportHandler struct {
	directory AirportDirectory
}

func NewAirportHandler(directory AirportDirectory) *AirportHandler {
	return &AirportHandler{directory: directory}
}

// GET /api/airports/{iata}
func (h *AirportHandler) GetAirport(w http.ResponseWriter, r *http.Request) {
	iata := strings.TrimSpace(chi.URLParam(r, "iata"))
	if iata == "" {
		writeError(w, http.StatusBadRequest, "iata is required")
		return
	}

	airport, err := h.directory.GetByIata(r.Context(), iata)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        airport.ID.String(),
		"iata_code": airport.IataCode,
		"icao_code": airport.IcaoCode,
		"name":      airport.Name,
		"timezone":  airport.Timezone,
	})
}
