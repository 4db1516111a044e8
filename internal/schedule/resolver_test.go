package schedule

import (
	"testing"
	"time"

	"airline_ops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func ams() *models.Airport {
	return &models.Airport{ID: uuid.New(), IataCode: "AMS", IcaoCode: "EHAM", Name: "Schiphol", Timezone: "Europe/Amsterdam"}
}

func icn() *models.Airport {
	return &models.Airport{ID: uuid.New(), IataCode: "ICN", IcaoCode: "RKSI", Name: "Incheon", Timezone: "Asia/Seoul"}
}

func wall(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestResolve_UnambiguousCrossZone(t *testing.T) {
	r := NewResolver(nil)

	// ICN 10:00 (+9) -> AMS 13:30 (+2, июль): календарные даты совпадают,
	// реальная длительность 10ч30м.
	sched, err := r.Resolve(
		icn(), wall(2025, time.July, 10, 10, 0),
		ams(), wall(2025, time.July, 10, 13, 30),
		models.ThrowWhenAmbiguous, testNow,
	)
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, time.July, 10, 1, 0, 0, 0, time.UTC), sched.DepartureAt)
	require.Equal(t, time.Date(2025, time.July, 10, 11, 30, 0, 0, time.UTC), sched.ArrivalAt)
	require.Equal(t, 10*time.Hour+30*time.Minute, sched.Duration())
}

func TestResolve_AmbiguousFallBack(t *testing.T) {
	r := NewResolver(nil)

	// 2025-10-26 02:30 в Амстердаме случается дважды: на CEST и на CET.
	depLocal := wall(2025, time.October, 26, 2, 30)
	arrLocal := wall(2025, time.October, 26, 14, 0)

	earlier, err := r.Resolve(ams(), depLocal, icn(), arrLocal, models.PreferEarlier, testNow)
	require.NoError(t, err)

	later, err := r.Resolve(ams(), depLocal, icn(), arrLocal, models.PreferLater, testNow)
	require.NoError(t, err)

	require.Equal(t, time.Hour, later.DepartureAt.Sub(earlier.DepartureAt))
	require.Equal(t, time.Date(2025, time.October, 26, 0, 30, 0, 0, time.UTC), earlier.DepartureAt)
	require.Equal(t, time.Date(2025, time.October, 26, 1, 30, 0, 0, time.UTC), later.DepartureAt)

	_, err = r.Resolve(ams(), depLocal, icn(), arrLocal, models.ThrowWhenAmbiguous, testNow)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestResolve_SkippedTimeAlwaysRejected(t *testing.T) {
	r := NewResolver(nil)

	// 2025-03-30 02:30 в Амстердаме не существует: стрелки прыгают 02:00 -> 03:00.
	depLocal := wall(2025, time.March, 30, 2, 30)
	arrLocal := wall(2025, time.March, 30, 15, 0)

	for _, policy := range []models.AmbiguityPolicy{models.PreferEarlier, models.PreferLater, models.ThrowWhenAmbiguous} {
		_, err := r.Resolve(ams(), depLocal, icn(), arrLocal, policy, testNow)
		require.ErrorIs(t, err, models.ErrValidation, "policy %s", policy)
	}
}

func TestResolve_PastDepartureRejected(t *testing.T) {
	r := NewResolver(nil)

	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	_, err := r.Resolve(
		ams(), wall(2025, time.May, 1, 10, 0),
		icn(), wall(2025, time.May, 2, 8, 0),
		models.ThrowWhenAmbiguous, now,
	)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestResolve_ArrivalBeforeDepartureRejected(t *testing.T) {
	r := NewResolver(nil)

	// AMS 23:00 (+2, июль) = 21:00Z; ICN 01:00 следующего дня (+9) = 16:00Z —
	// прилёт "раньше" вылета по инстантам.
	_, err := r.Resolve(
		ams(), wall(2025, time.July, 10, 23, 0),
		icn(), wall(2025, time.July, 11, 1, 0),
		models.ThrowWhenAmbiguous, testNow,
	)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestResolve_ZeroDurationAllowed(t *testing.T) {
	r := NewResolver(nil)

	// Вылет и прилёт в один и тот же инстант: вырожденно, но допустимо.
	sched, err := r.Resolve(
		ams(), wall(2025, time.July, 10, 10, 0),
		icn(), wall(2025, time.July, 10, 17, 0),
		models.ThrowWhenAmbiguous, testNow,
	)
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), sched.Duration())
}

func TestResolve_UnknownZoneIsFailure(t *testing.T) {
	r := NewResolver(nil)

	broken := &models.Airport{ID: uuid.New(), IataCode: "XXX", Timezone: "Mars/Olympus"}
	_, err := r.Resolve(
		broken, wall(2025, time.July, 10, 10, 0),
		icn(), wall(2025, time.July, 10, 20, 0),
		models.ThrowWhenAmbiguous, testNow,
	)
	require.ErrorIs(t, err, models.ErrFailure)
}

func TestResolve_NilAirportsRejected(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.Resolve(nil, wall(2025, time.July, 10, 10, 0), icn(), wall(2025, time.July, 10, 20, 0), models.PreferEarlier, testNow)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = r.Resolve(ams(), wall(2025, time.July, 10, 10, 0), nil, wall(2025, time.July, 10, 20, 0), models.PreferEarlier, testNow)
	require.ErrorIs(t, err, models.ErrValidation)
}
