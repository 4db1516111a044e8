package models

import "github.com/google/uuid"

// Входные DTO API. Локальные времена приходят строками без зоны
// ("2006-01-02T15:04"), зону даёт аэропорт.

type ScheduleFlightRequest struct {
	IataNumber     string    `json:"iata_number"`
	IcaoNumber     string    `json:"icao_number"`
	DepartureIata  string    `json:"departure_iata"`
	ArrivalIata    string    `json:"arrival_iata"`
	DepartureLocal string    `json:"departure_local"`
	ArrivalLocal   string    `json:"arrival_local"`
	Policy         string    `json:"policy"`
	AircraftID     uuid.UUID `json:"aircraft_id"`
	EconomyPrice   Money     `json:"economy_price"`
	BusinessPrice  Money     `json:"business_price"`
}

type RescheduleRequest struct {
	DepartureLocal string `json:"departure_local"`
	ArrivalLocal   string `json:"arrival_local"`
	Policy         string `json:"policy,omitempty"` // пусто — оставить политику текущего расписания
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type PricingRequest struct {
	EconomyPrice  Money `json:"economy_price"`
	BusinessPrice Money `json:"business_price"`
}

type ReassignAircraftRequest struct {
	AircraftID uuid.UUID `json:"aircraft_id"`
}

type SeatAssignmentRequest struct {
	SeatID    uuid.UUID `json:"seat_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type LegRequest struct {
	FlightID uuid.UUID               `json:"flight_id"`
	Seats    []SeatAssignmentRequest `json:"seats"`
}

type ItineraryRequest struct {
	ContactEmail string       `json:"contact_email,omitempty"`
	Legs         []LegRequest `json:"legs"`
}
