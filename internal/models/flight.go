package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AmbiguityPolicy string

const (
	PreferEarlier      AmbiguityPolicy = "PreferEarlier"
	PreferLater        AmbiguityPolicy = "PreferLater"
	ThrowWhenAmbiguous AmbiguityPolicy = "ThrowWhenAmbiguous"
)

func (p AmbiguityPolicy) Valid() bool {
	switch p {
	case PreferEarlier, PreferLater, ThrowWhenAmbiguous:
		return true
	}
	return false
}

func ParseAmbiguityPolicy(raw string) (AmbiguityPolicy, error) {
	p := AmbiguityPolicy(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown ambiguity policy %q", ErrValidation, raw)
	}
	return p, nil
}

// Schedule — value object, принадлежит рейсу и неизменяем.
// Перенос рейса = построить новый Schedule и заменить целиком.
// Локальные времена храним для отображения, инстанты — для сравнения и поиска.
type Schedule struct {
	DepartureAirport *Airport        `json:"departure_airport"`
	ArrivalAirport   *Airport        `json:"arrival_airport"`
	DepartureLocal   time.Time       `json:"departure_local"` // wall-clock в зоне вылета
	ArrivalLocal     time.Time       `json:"arrival_local"`   // wall-clock в зоне прилёта
	DepartureAt      time.Time       `json:"departure_at"`    // UTC
	ArrivalAt        time.Time       `json:"arrival_at"`      // UTC
	Policy           AmbiguityPolicy `json:"policy"`
}

func (s *Schedule) Duration() time.Duration {
	return s.ArrivalAt.Sub(s.DepartureAt)
}

// Лимиты форматов номеров рейса: IATA "KL0835", ICAO "KLM0835".
const (
	MaxIataFlightNumberLen = 6
	MaxIcaoFlightNumberLen = 7
)

// Flight владеет своим Schedule и статусом; аэропорты и борт только
// референсит. Создаётся всегда в статусе scheduled.
type Flight struct {
	ID            uuid.UUID    `json:"id"`
	IataNumber    string       `json:"iata_number"`
	IcaoNumber    string       `json:"icao_number"`
	Schedule      *Schedule    `json:"schedule"`
	Status        FlightStatus `json:"status"`
	Aircraft      *Aircraft    `json:"aircraft"`
	EconomyPrice  Money        `json:"economy_price"`
	BusinessPrice Money        `json:"business_price"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewFlight(
	iataNumber, icaoNumber string,
	schedule *Schedule,
	aircraft *Aircraft,
	economy, business Money,
	now time.Time,
) (*Flight, error) {
	if err := validateFlightNumbers(iataNumber, icaoNumber); err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, fmt.Errorf("%w: schedule is required", ErrValidation)
	}
	if aircraft == nil {
		return nil, fmt.Errorf("%w: aircraft is required", ErrValidation)
	}
	if !economy.Valid() || !business.Valid() {
		return nil, fmt.Errorf("%w: price must be non-negative with a 3-letter currency", ErrValidation)
	}

	return &Flight{
		ID:            uuid.New(),
		IataNumber:    iataNumber,
		IcaoNumber:    icaoNumber,
		Schedule:      schedule,
		Status:        StatusScheduled,
		Aircraft:      aircraft,
		EconomyPrice:  economy,
		BusinessPrice: business,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// TransitionTo проверяет переход по таблице, ставит UpdatedAt и
// возвращает событие для отправки наружу. Доставка — забота вызывающего.
func (f *Flight) TransitionTo(to FlightStatus, now time.Time) (FlightEvent, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown flight status %q", ErrValidation, to)
	}
	if !CanTransition(f.Status, to) {
		return nil, fmt.Errorf("%w: illegal status transition %s -> %s", ErrValidation, f.Status, to)
	}

	f.Status = to
	f.UpdatedAt = now

	return newStatusEvent(f, now), nil
}

// Reschedule — swap расписания целиком. Терминальный рейс не переносится.
func (f *Flight) Reschedule(schedule *Schedule, now time.Time) error {
	if schedule == nil {
		return fmt.Errorf("%w: schedule is required", ErrValidation)
	}
	if f.Status.Terminal() {
		return fmt.Errorf("%w: cannot reschedule a %s flight", ErrValidation, f.Status)
	}
	f.Schedule = schedule
	f.UpdatedAt = now
	return nil
}

func (f *Flight) UpdatePricing(economy, business Money, now time.Time) error {
	if !economy.Valid() || !business.Valid() {
		return fmt.Errorf("%w: price must be non-negative with a 3-letter currency", ErrValidation)
	}
	f.EconomyPrice = economy
	f.BusinessPrice = business
	f.UpdatedAt = now
	return nil
}

func (f *Flight) ReassignAircraft(aircraft *Aircraft, now time.Time) error {
	if aircraft == nil {
		return fmt.Errorf("%w: aircraft is required", ErrValidation)
	}
	if f.Status.Terminal() {
		return fmt.Errorf("%w: cannot reassign aircraft on a %s flight", ErrValidation, f.Status)
	}
	f.Aircraft = aircraft
	f.UpdatedAt = now
	return nil
}

func validateFlightNumbers(iata, icao string) error {
	if iata == "" {
		return fmt.Errorf("%w: iata flight number is required", ErrValidation)
	}
	if icao == "" {
		return fmt.Errorf("%w: icao flight number is required", ErrValidation)
	}
	if len(iata) > MaxIataFlightNumberLen {
		return fmt.Errorf("%w: iata flight number %q is too long", ErrValidation, iata)
	}
	if len(icao) > MaxIcaoFlightNumberLen {
		return fmt.Errorf("%w: icao flight number %q is too long", ErrValidation, icao)
	}
	return nil
}
