package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testSchedule(dep, arr time.Time) *Schedule {
	return &Schedule{
		DepartureAirport: &Airport{ID: uuid.New(), IataCode: "AMS", IcaoCode: "EHAM", Name: "Schiphol", Timezone: "Europe/Amsterdam"},
		ArrivalAirport:   &Airport{ID: uuid.New(), IataCode: "ICN", IcaoCode: "RKSI", Name: "Incheon", Timezone: "Asia/Seoul"},
		DepartureLocal:   dep,
		ArrivalLocal:     arr,
		DepartureAt:      dep,
		ArrivalAt:        arr,
		Policy:           ThrowWhenAmbiguous,
	}
}

func testFlight(t *testing.T) *Flight {
	t.Helper()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f, err := NewFlight(
		"KL0835", "KLM0835",
		testSchedule(now.Add(24*time.Hour), now.Add(35*time.Hour)),
		&Aircraft{ID: uuid.New(), Model: "Boeing 777-300ER", Registration: "PH-BVA"},
		Money{Amount: 45000, Currency: "EUR"},
		Money{Amount: 210000, Currency: "EUR"},
		now,
	)
	require.NoError(t, err)
	return f
}

func TestNewFlight_Validation(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sched := testSchedule(now.Add(time.Hour), now.Add(2*time.Hour))
	aircraft := &Aircraft{ID: uuid.New(), Model: "A330", Registration: "HL1234"}
	eur := Money{Amount: 100, Currency: "EUR"}

	cases := []struct {
		name string
		fn   func() (*Flight, error)
	}{
		{"empty iata number", func() (*Flight, error) {
			return NewFlight("", "KLM0835", sched, aircraft, eur, eur, now)
		}},
		{"empty icao number", func() (*Flight, error) {
			return NewFlight("KL0835", "", sched, aircraft, eur, eur, now)
		}},
		{"iata number too long", func() (*Flight, error) {
			return NewFlight("KL08356", "KLM0835", sched, aircraft, eur, eur, now)
		}},
		{"icao number too long", func() (*Flight, error) {
			return NewFlight("KL0835", "KLM08357", sched, aircraft, eur, eur, now)
		}},
		{"nil schedule", func() (*Flight, error) {
			return NewFlight("KL0835", "KLM0835", nil, aircraft, eur, eur, now)
		}},
		{"nil aircraft", func() (*Flight, error) {
			return NewFlight("KL0835", "KLM0835", sched, nil, eur, eur, now)
		}},
		{"negative price", func() (*Flight, error) {
			return NewFlight("KL0835", "KLM0835", sched, aircraft, Money{Amount: -1, Currency: "EUR"}, eur, now)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn()
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNewFlight_StartsScheduled(t *testing.T) {
	f := testFlight(t)
	require.Equal(t, StatusScheduled, f.Status)
	require.NotEqual(t, uuid.Nil, f.ID)
}

func TestTransitionTo_EmitsVariantPerTargetStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	t.Run("departed", func(t *testing.T) {
		f := testFlight(t)
		ev, err := f.TransitionTo(StatusEnRoute, now)
		require.NoError(t, err)
		require.Equal(t, EventFlightDeparted, ev.EventType())
		require.Equal(t, f.ID, ev.FlightRef())
		require.Equal(t, now, f.UpdatedAt)

		departed, ok := ev.(FlightDepartedEvent)
		require.True(t, ok)
		require.Equal(t, f.Aircraft.ID, departed.AircraftID)
	})

	t.Run("delayed carries departure airport", func(t *testing.T) {
		f := testFlight(t)
		ev, err := f.TransitionTo(StatusDelayed, now)
		require.NoError(t, err)

		delayed, ok := ev.(FlightDelayedEvent)
		require.True(t, ok)
		require.Equal(t, "AMS", delayed.DepartureIata)
	})

	t.Run("arrived carries arrival airport", func(t *testing.T) {
		f := testFlight(t)
		_, err := f.TransitionTo(StatusEnRoute, now)
		require.NoError(t, err)
		ev, err := f.TransitionTo(StatusArrived, now)
		require.NoError(t, err)

		arrived, ok := ev.(FlightArrivedEvent)
		require.True(t, ok)
		require.Equal(t, "ICN", arrived.ArrivalIata)
	})

	t.Run("cancelled", func(t *testing.T) {
		f := testFlight(t)
		ev, err := f.TransitionTo(StatusCancelled, now)
		require.NoError(t, err)
		require.Equal(t, EventFlightCancelled, ev.EventType())
	})
}

func TestTransitionTo_IllegalTransitionKeepsFlightIntact(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	f := testFlight(t)
	_, err := f.TransitionTo(StatusCancelled, now)
	require.NoError(t, err)

	// из терминального состояния пути нет
	_, err = f.TransitionTo(StatusEnRoute, now)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, StatusCancelled, f.Status)

	f2 := testFlight(t)
	_, err = f2.TransitionTo(StatusArrived, now) // scheduled -> arrived минуя en_route
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, StatusScheduled, f2.Status)
}

func TestReschedule_TerminalFlightRejected(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	f := testFlight(t)
	_, err := f.TransitionTo(StatusCancelled, now)
	require.NoError(t, err)

	err = f.Reschedule(testSchedule(now.Add(48*time.Hour), now.Add(60*time.Hour)), now)
	require.ErrorIs(t, err, ErrValidation)
}

func TestReschedule_ReplacesScheduleWhole(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	f := testFlight(t)
	old := f.Schedule

	next := testSchedule(now.Add(48*time.Hour), now.Add(60*time.Hour))
	require.NoError(t, f.Reschedule(next, now))
	require.Same(t, next, f.Schedule)
	require.NotSame(t, old, f.Schedule)
}
