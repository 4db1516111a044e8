package models

import "fmt"

type FlightStatus string

const (
	StatusScheduled      FlightStatus = "scheduled"
	StatusEnRoute        FlightStatus = "en_route"
	StatusDelayed        FlightStatus = "delayed"
	StatusDelayedEnRoute FlightStatus = "delayed_en_route"
	StatusArrived        FlightStatus = "arrived"
	StatusCancelled      FlightStatus = "cancelled"
)

// Таблица допустимых переходов. Arrived и Cancelled — терминальные.
var statusTransitions = map[FlightStatus][]FlightStatus{
	StatusScheduled:      {StatusEnRoute, StatusCancelled, StatusDelayed},
	StatusEnRoute:        {StatusArrived, StatusDelayedEnRoute},
	StatusDelayed:        {StatusDelayedEnRoute, StatusCancelled},
	StatusDelayedEnRoute: {StatusEnRoute, StatusArrived},
	StatusArrived:        {},
	StatusCancelled:      {},
}

func AllFlightStatuses() []FlightStatus {
	return []FlightStatus{
		StatusScheduled,
		StatusEnRoute,
		StatusDelayed,
		StatusDelayedEnRoute,
		StatusArrived,
		StatusCancelled,
	}
}

func (s FlightStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s FlightStatus) Terminal() bool {
	return s.Valid() && len(statusTransitions[s]) == 0
}

func ParseFlightStatus(raw string) (FlightStatus, error) {
	s := FlightStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown flight status %q", ErrValidation, raw)
	}
	return s, nil
}

// CanTransition — самопереход всегда запрещён, остальное по таблице.
func CanTransition(from, to FlightStatus) bool {
	if from == to {
		return false
	}
	for _, t := range statusTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
