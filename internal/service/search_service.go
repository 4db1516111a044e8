package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"airline_ops/internal/metrics"
	"airline_ops/internal/models"
	"airline_ops/internal/repository"
	"airline_ops/internal/schedule"
	"airline_ops/internal/search"

	"github.com/google/uuid"
)

const searchDateLayout = "2006-01-02"

var iataRe = regexp.MustCompile(`^[A-Z]{3}$`)

type SearchService struct {
	flightRepo *repository.FlightRepository
	seatRepo   *repository.SeatRepository
	engine     *search.Engine
	clock      schedule.Clock

	windowDays int
	maxLegs    int
	logger     *log.Logger
}

func NewSearchService(
	flightRepo *repository.FlightRepository,
	seatRepo *repository.SeatRepository,
	engine *search.Engine,
	clock schedule.Clock,
	windowDays int,
	maxLegs int,
	logger *log.Logger,
) *SearchService {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	if maxLegs <= 0 {
		maxLegs = search.DefaultMaxLegs
	}

	return &SearchService{
		flightRepo: flightRepo,
		seatRepo:   seatRepo,
		engine:     engine,
		clock:      clock,
		windowDays: windowDays,
		maxLegs:    maxLegs,
		logger:     logger,
	}
}

func (s *SearchService) MaxLegs() int { return s.maxLegs }

// Search: кандидаты из окна [date, date+windowDays] по departure_local,
// фильтр (будущий вылет, не cancelled/arrived, есть свободные места),
// затем движок маршрутов.
func (s *SearchService) Search(ctx context.Context, fromIata, toIata, dateRaw string, maxLegs int) (*models.SearchResponse, error) {
	fromIata = strings.ToUpper(strings.TrimSpace(fromIata))
	toIata = strings.ToUpper(strings.TrimSpace(toIata))

	if !iataRe.MatchString(fromIata) {
		return nil, fmt.Errorf("%w: from must be a 3-letter IATA code", models.ErrValidation)
	}
	if !iataRe.MatchString(toIata) {
		return nil, fmt.Errorf("%w: to must be a 3-letter IATA code", models.ErrValidation)
	}
	if fromIata == toIata {
		return nil, fmt.Errorf("%w: from and to must differ", models.ErrValidation)
	}

	date, err := time.ParseInLocation(searchDateLayout, strings.TrimSpace(dateRaw), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be in %s format", models.ErrValidation, searchDateLayout)
	}

	if maxLegs <= 0 {
		maxLegs = s.maxLegs
	}
	if maxLegs > s.maxLegs {
		return nil, fmt.Errorf("%w: max_legs cannot exceed %d", models.ErrValidation, s.maxLegs)
	}

	started := time.Now()

	candidates, err := s.flightRepo.ListByDepartureWindow(ctx, date, date.AddDate(0, 0, s.windowDays+1))
	if err != nil {
		return nil, fmt.Errorf("list candidate flights: %w", err)
	}

	candidates, err = s.filterBookableCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	paths, err := s.engine.Search(ctx, candidates, fromIata, toIata, date, maxLegs)
	if err != nil {
		return nil, err
	}

	metrics.ObserveSearch(time.Since(started), len(paths))

	resp := models.NewSearchResponse(fromIata, toIata, date.Format(searchDateLayout), paths)
	return &resp, nil
}

// Рейсы в прошлом, в терминальном/летящем состоянии без продажи и без
// свободных мест маршрутизировать бессмысленно.
func (s *SearchService) filterBookableCandidates(ctx context.Context, flights []*models.Flight) ([]*models.Flight, error) {
	now := s.clock.Now()

	kept := flights[:0]
	ids := make([]uuid.UUID, 0, len(flights))
	for _, f := range flights {
		if !f.Schedule.DepartureAt.After(now) {
			continue
		}
		if !bookable(f.Status) {
			continue
		}
		kept = append(kept, f)
		ids = append(ids, f.ID)
	}

	if len(kept) == 0 {
		return nil, nil
	}

	free, err := s.seatRepo.FreeSeatCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count free seats: %w", err)
	}

	out := kept[:0]
	for _, f := range kept {
		if free[f.ID] > 0 {
			out = append(out, f)
		}
	}
	return out, nil
}
