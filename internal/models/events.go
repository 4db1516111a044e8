package models

import (
	"time"

	"github.com/google/uuid"
)

// FlightEvent — событие смены статуса рейса. Вариант выбирается по целевому
// статусу, каждый несёт только свои поля.
type FlightEvent interface {
	EventType() string
	FlightRef() uuid.UUID
}

const (
	EventFlightDeparted       = "flight.departed"
	EventFlightDelayed        = "flight.delayed"
	EventFlightDelayedEnRoute = "flight.delayed_en_route"
	EventFlightArrived        = "flight.arrived"
	EventFlightCancelled      = "flight.cancelled"
)

type FlightDepartedEvent struct {
	FlightID   uuid.UUID `json:"flight_id"`
	AircraftID uuid.UUID `json:"aircraft_id"`
	DepartedAt time.Time `json:"departed_at"`
}

func (e FlightDepartedEvent) EventType() string    { return EventFlightDeparted }
func (e FlightDepartedEvent) FlightRef() uuid.UUID { return e.FlightID }

type FlightDelayedEvent struct {
	FlightID      uuid.UUID `json:"flight_id"`
	DepartureIata string    `json:"departure_iata"`
	DelayedAt     time.Time `json:"delayed_at"`
}

func (e FlightDelayedEvent) EventType() string    { return EventFlightDelayed }
func (e FlightDelayedEvent) FlightRef() uuid.UUID { return e.FlightID }

type FlightDelayedEnRouteEvent struct {
	FlightID   uuid.UUID `json:"flight_id"`
	AircraftID uuid.UUID `json:"aircraft_id"`
	DelayedAt  time.Time `json:"delayed_at"`
}

func (e FlightDelayedEnRouteEvent) EventType() string    { return EventFlightDelayedEnRoute }
func (e FlightDelayedEnRouteEvent) FlightRef() uuid.UUID { return e.FlightID }

type FlightArrivedEvent struct {
	FlightID    uuid.UUID `json:"flight_id"`
	AircraftID  uuid.UUID `json:"aircraft_id"`
	ArrivalIata string    `json:"arrival_iata"`
	ArrivedAt   time.Time `json:"arrived_at"`
}

func (e FlightArrivedEvent) EventType() string    { return EventFlightArrived }
func (e FlightArrivedEvent) FlightRef() uuid.UUID { return e.FlightID }

type FlightCancelledEvent struct {
	FlightID    uuid.UUID `json:"flight_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (e FlightCancelledEvent) EventType() string    { return EventFlightCancelled }
func (e FlightCancelledEvent) FlightRef() uuid.UUID { return e.FlightID }

// newStatusEvent строит вариант по уже выставленному статусу рейса.
func newStatusEvent(f *Flight, now time.Time) FlightEvent {
	switch f.Status {
	case StatusEnRoute:
		return FlightDepartedEvent{FlightID: f.ID, AircraftID: f.Aircraft.ID, DepartedAt: now}
	case StatusDelayed:
		return FlightDelayedEvent{FlightID: f.ID, DepartureIata: f.Schedule.DepartureAirport.IataCode, DelayedAt: now}
	case StatusDelayedEnRoute:
		return FlightDelayedEnRouteEvent{FlightID: f.ID, AircraftID: f.Aircraft.ID, DelayedAt: now}
	case StatusArrived:
		return FlightArrivedEvent{FlightID: f.ID, AircraftID: f.Aircraft.ID, ArrivalIata: f.Schedule.ArrivalAirport.IataCode, ArrivedAt: now}
	case StatusCancelled:
		return FlightCancelledEvent{FlightID: f.ID, CancelledAt: now}
	}
	return nil
}
