package schedule

import (
	"fmt"
	"sort"
	"time"

	"airline_ops/internal/models"
)

// Формат локального времени на входе API: без зоны, зону даёт аэропорт.
const LocalTimeLayout = "2006-01-02T15:04"

// ZoneProvider — доступ к базе IANA-зон. Интерфейс, чтобы ядро можно было
// тестировать на фиксированных зонах без системной tzdata.
type ZoneProvider interface {
	Zone(name string) (*time.Location, error)
}

// SystemZones — системная tzdata через time.LoadLocation.
type SystemZones struct{}

func (SystemZones) Zone(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Resolver struct {
	zones ZoneProvider
}

func NewResolver(zones ZoneProvider) *Resolver {
	if zones == nil {
		zones = SystemZones{}
	}
	return &Resolver{zones: zones}
}

// Resolve превращает пару (аэропорт, локальное время) в расписание с
// однозначными UTC-инстантами. Неоднозначные времена (перевод часов назад)
// разрешает политика, несуществующие (перевод вперёд) — всегда отказ.
// Вылет раньше now и прилёт раньше вылета — отказ; нулевая длительность
// допустима.
func (r *Resolver) Resolve(
	departureAirport *models.Airport,
	departureLocal time.Time,
	arrivalAirport *models.Airport,
	arrivalLocal time.Time,
	policy models.AmbiguityPolicy,
	now time.Time,
) (*models.Schedule, error) {
	if departureAirport == nil || arrivalAirport == nil {
		return nil, fmt.Errorf("%w: both airports are required", models.ErrValidation)
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: unknown ambiguity policy %q", models.ErrValidation, policy)
	}

	departureAt, err := r.resolveAt(departureAirport, departureLocal, policy)
	if err != nil {
		return nil, err
	}
	arrivalAt, err := r.resolveAt(arrivalAirport, arrivalLocal, policy)
	if err != nil {
		return nil, err
	}

	if departureAt.Before(now) {
		return nil, fmt.Errorf("%w: departure %s is in the past", models.ErrValidation, departureAt.Format(time.RFC3339))
	}
	if arrivalAt.Before(departureAt) {
		return nil, fmt.Errorf("%w: arrival %s is before departure %s",
			models.ErrValidation, arrivalAt.Format(time.RFC3339), departureAt.Format(time.RFC3339))
	}

	return &models.Schedule{
		DepartureAirport: departureAirport,
		ArrivalAirport:   arrivalAirport,
		DepartureLocal:   departureLocal,
		ArrivalLocal:     arrivalLocal,
		DepartureAt:      departureAt.UTC(),
		ArrivalAt:        arrivalAt.UTC(),
		Policy:           policy,
	}, nil
}

func (r *Resolver) resolveAt(airport *models.Airport, local time.Time, policy models.AmbiguityPolicy) (time.Time, error) {
	loc, err := r.zones.Zone(airport.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: load zone %q for %s: %v",
			models.ErrFailure, airport.Timezone, airport.IataCode, err)
	}

	instants := wallMappings(local, loc)

	switch len(instants) {
	case 0:
		// Дыра "spring forward": такого локального времени не существует.
		return time.Time{}, fmt.Errorf("%w: local time %s does not exist in %s (skipped by DST transition)",
			models.ErrValidation, local.Format(LocalTimeLayout), airport.Timezone)
	case 1:
		return instants[0], nil
	default:
		switch policy {
		case models.PreferEarlier:
			return instants[0], nil
		case models.PreferLater:
			return instants[len(instants)-1], nil
		default:
			return time.Time{}, fmt.Errorf("%w: local time %s is ambiguous in %s",
				models.ErrValidation, local.Format(LocalTimeLayout), airport.Timezone)
		}
	}
}

// wallMappings находит все инстанты, чьи стеночные часы в loc совпадают с
// local. Перебираем смещения зоны вокруг кандидата, не полагаясь на то,
// какой из двух вариантов выберет time.Date при неоднозначности.
func wallMappings(local time.Time, loc *time.Location) []time.Time {
	year, month, day := local.Date()
	hour, min, sec := local.Clock()

	base := time.Date(year, month, day, hour, min, sec, 0, loc)
	wallUTC := time.Date(year, month, day, hour, min, sec, 0, time.UTC)

	probes := []time.Time{
		base.Add(-24 * time.Hour),
		base.Add(-12 * time.Hour),
		base,
		base.Add(12 * time.Hour),
		base.Add(24 * time.Hour),
	}

	seen := make(map[int64]struct{}, 2)
	var out []time.Time

	for _, p := range probes {
		_, offset := p.Zone()
		candidate := wallUTC.Add(-time.Duration(offset) * time.Second).In(loc)

		cy, cm, cd := candidate.Date()
		ch, cmin, cs := candidate.Clock()
		if cy != year || cm != month || cd != day || ch != hour || cmin != min || cs != sec {
			continue
		}
		if _, ok := seen[candidate.Unix()]; ok {
			continue
		}
		seen[candidate.Unix()] = struct{}{}
		out = append(out, candidate)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
