package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"airline_ops/internal/kafka"
	"airline_ops/internal/metrics"
	"airline_ops/internal/models"
	"airline_ops/internal/repository"
	"airline_ops/internal/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightService struct {
	db           *pgxpool.Pool
	airportRepo  *repository.AirportRepository
	aircraftRepo *repository.AircraftRepository
	flightRepo   *repository.FlightRepository
	bookingRepo  *repository.BookingRepository
	outboxRepo   *repository.OutboxRepository

	resolver *schedule.Resolver
	clock    schedule.Clock

	kafkaTopic string
	logger     *log.Logger
}

func NewFlightService(
	db *pgxpool.Pool,
	airportRepo *repository.AirportRepository,
	aircraftRepo *repository.AircraftRepository,
	flightRepo *repository.FlightRepository,
	bookingRepo *repository.BookingRepository,
	outboxRepo *repository.OutboxRepository,
	resolver *schedule.Resolver,
	clock schedule.Clock,
	kafkaTopic string,
	logger *log.Logger,
) *FlightService {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	if strings.TrimSpace(kafkaTopic) == "" {
		kafkaTopic = "flight_events"
	}

	return &FlightService{
		db:           db,
		airportRepo:  airportRepo,
		aircraftRepo: aircraftRepo,
		flightRepo:   flightRepo,
		bookingRepo:  bookingRepo,
		outboxRepo:   outboxRepo,
		resolver:     resolver,
		clock:        clock,
		kafkaTopic:   kafkaTopic,
		logger:       logger,
	}
}

// ScheduleFlight: запрос -> резолв расписания -> рейс -> в БД.
func (s *FlightService) ScheduleFlight(ctx context.Context, req *models.ScheduleFlightRequest) (*models.Flight, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", models.ErrValidation)
	}

	depLocal, err := parseLocalTime(req.DepartureLocal, "departure_local")
	if err != nil {
		return nil, err
	}
	arrLocal, err := parseLocalTime(req.ArrivalLocal, "arrival_local")
	if err != nil {
		return nil, err
	}
	policy, err := models.ParseAmbiguityPolicy(req.Policy)
	if err != nil {
		return nil, err
	}

	depAirport, err := s.airportRepo.GetByIata(ctx, req.DepartureIata)
	if err != nil {
		return nil, err
	}
	arrAirport, err := s.airportRepo.GetByIata(ctx, req.ArrivalIata)
	if err != nil {
		return nil, err
	}
	aircraft, err := s.aircraftRepo.GetByID(ctx, req.AircraftID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	sched, err := s.resolver.Resolve(depAirport, depLocal, arrAirport, arrLocal, policy, now)
	if err != nil {
		return nil, err
	}

	flight, err := models.NewFlight(req.IataNumber, req.IcaoNumber, sched, aircraft, req.EconomyPrice, req.BusinessPrice, now)
	if err != nil {
		return nil, err
	}

	if err := s.flightRepo.Create(ctx, flight); err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}

	metrics.IncFlightScheduled()
	return flight, nil
}

func (s *FlightService) GetFlight(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	return s.flightRepo.GetByID(ctx, id)
}

// Reschedule — swap расписания: новое строится той же политикой, если
// вызывающий не передал другую.
func (s *FlightService) Reschedule(ctx context.Context, id uuid.UUID, req *models.RescheduleRequest) (*models.Flight, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", models.ErrValidation)
	}

	flight, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	depLocal, err := parseLocalTime(req.DepartureLocal, "departure_local")
	if err != nil {
		return nil, err
	}
	arrLocal, err := parseLocalTime(req.ArrivalLocal, "arrival_local")
	if err != nil {
		return nil, err
	}

	policy := flight.Schedule.Policy
	if strings.TrimSpace(req.Policy) != "" {
		policy, err = models.ParseAmbiguityPolicy(req.Policy)
		if err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()

	sched, err := s.resolver.Resolve(
		flight.Schedule.DepartureAirport, depLocal,
		flight.Schedule.ArrivalAirport, arrLocal,
		policy, now,
	)
	if err != nil {
		return nil, err
	}

	if err := flight.Reschedule(sched, now); err != nil {
		return nil, err
	}

	if err := s.flightRepo.Update(ctx, flight); err != nil {
		return nil, fmt.Errorf("update flight: %w", err)
	}

	return flight, nil
}

// ChangeStatus — переход по таблице + событие в outbox одной транзакцией.
func (s *FlightService) ChangeStatus(ctx context.Context, id uuid.UUID, statusRaw string) (*models.Flight, error) {
	to, err := models.ParseFlightStatus(statusRaw)
	if err != nil {
		return nil, err
	}

	flight, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	event, err := flight.TransitionTo(to, now)
	if err != nil {
		return nil, err
	}

	envelope, err := kafka.NewEnvelope(event, now)
	if err != nil {
		return nil, fmt.Errorf("build event envelope: %w", err)
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal event envelope: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.flightRepo.UpdateTx(ctx, tx, flight); err != nil {
		return nil, fmt.Errorf("update flight tx: %w", err)
	}

	ob := &models.OutboxMessage{
		Topic:   s.kafkaTopic,
		Payload: payload,
	}
	if err := s.outboxRepo.CreateMessage(ctx, tx, ob); err != nil {
		return nil, fmt.Errorf("create outbox message tx: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	metrics.IncStatusTransition(string(to))
	return flight, nil
}

func (s *FlightService) UpdatePricing(ctx context.Context, id uuid.UUID, req *models.PricingRequest) (*models.Flight, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", models.ErrValidation)
	}

	flight, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := flight.UpdatePricing(req.EconomyPrice, req.BusinessPrice, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.flightRepo.Update(ctx, flight); err != nil {
		return nil, fmt.Errorf("update flight: %w", err)
	}

	return flight, nil
}

// ReassignAircraft меняет борт; терминальный рейс не трогаем.
func (s *FlightService) ReassignAircraft(ctx context.Context, id, aircraftID uuid.UUID) (*models.Flight, error) {
	flight, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	aircraft, err := s.aircraftRepo.GetByID(ctx, aircraftID)
	if err != nil {
		return nil, err
	}

	if err := flight.ReassignAircraft(aircraft, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.flightRepo.Update(ctx, flight); err != nil {
		return nil, fmt.Errorf("update flight: %w", err)
	}

	return flight, nil
}

// DeleteFlight — охранное условие, не деструктор: рейс с активными
// бронированиями не удаляется, пока не прибыл.
func (s *FlightService) DeleteFlight(ctx context.Context, id uuid.UUID) error {
	flight, err := s.flightRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if flight.Status != models.StatusArrived {
		active, err := s.bookingRepo.CountActiveBookings(ctx, id)
		if err != nil {
			return fmt.Errorf("count bookings: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: flight %s has %d active bookings", models.ErrValidation, id, active)
		}
	}

	if err := s.flightRepo.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}

func parseLocalTime(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", models.ErrValidation, field)
	}
	t, err := time.ParseInLocation(schedule.LocalTimeLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be in %s format", models.ErrValidation, field, schedule.LocalTimeLayout)
	}
	return t, nil
}
