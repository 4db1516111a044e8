package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition_Table(t *testing.T) {
	allowed := map[FlightStatus][]FlightStatus{
		StatusScheduled:      {StatusEnRoute, StatusCancelled, StatusDelayed},
		StatusEnRoute:        {StatusArrived, StatusDelayedEnRoute},
		StatusDelayed:        {StatusDelayedEnRoute, StatusCancelled},
		StatusDelayedEnRoute: {StatusEnRoute, StatusArrived},
		StatusArrived:        {},
		StatusCancelled:      {},
	}

	for _, from := range AllFlightStatuses() {
		want := map[FlightStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range AllFlightStatuses() {
			require.Equal(t, want[to], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_SelfAlwaysForbidden(t *testing.T) {
	for _, s := range AllFlightStatuses() {
		require.False(t, CanTransition(s, s), "self transition %s", s)
	}
}

func TestFlightStatus_Terminal(t *testing.T) {
	require.True(t, StatusArrived.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusScheduled.Terminal())
	require.False(t, StatusEnRoute.Terminal())
	require.False(t, StatusDelayed.Terminal())
	require.False(t, StatusDelayedEnRoute.Terminal())
}

func TestParseFlightStatus(t *testing.T) {
	s, err := ParseFlightStatus("en_route")
	require.NoError(t, err)
	require.Equal(t, StatusEnRoute, s)

	_, err = ParseFlightStatus("boarding")
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParseFlightStatus("")
	require.ErrorIs(t, err, ErrValidation)
}
