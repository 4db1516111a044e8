package search

import (
	"context"
	"testing"
	"time"

	"airline_ops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var searchDate = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func airportFor(iata string) *models.Airport {
	return &models.Airport{ID: uuid.New(), IataCode: iata, Timezone: "UTC"}
}

// leg строит рейс from -> to с вылетом depHour и прилётом arrHour часов
// от полуночи запрошенной даты.
func leg(from, to string, depHour, arrHour float64) *models.Flight {
	dep := searchDate.Add(time.Duration(depHour * float64(time.Hour)))
	arr := searchDate.Add(time.Duration(arrHour * float64(time.Hour)))
	return &models.Flight{
		ID:         uuid.New(),
		IataNumber: "XX0001",
		Status:     models.StatusScheduled,
		Schedule: &models.Schedule{
			DepartureAirport: airportFor(from),
			ArrivalAirport:   airportFor(to),
			DepartureLocal:   dep,
			ArrivalLocal:     arr,
			DepartureAt:      dep,
			ArrivalAt:        arr,
			Policy:           models.ThrowWhenAmbiguous,
		},
	}
}

func TestSearch_DirectFlightSuppressesConnections(t *testing.T) {
	e := NewEngine()

	direct := leg("AMS", "ICN", 10, 21)
	viaFra1 := leg("AMS", "FRA", 8, 9)
	viaFra2 := leg("FRA", "ICN", 11, 22)

	paths, err := e.Search(context.Background(), []*models.Flight{viaFra1, viaFra2, direct}, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 1)
	require.Equal(t, direct.ID, paths[0][0].ID)
}

func TestSearch_TwoLegJourney(t *testing.T) {
	e := NewEngine()

	first := leg("AMS", "FRA", 8, 9.5)
	second := leg("FRA", "ICN", 11, 22)

	paths, err := e.Search(context.Background(), []*models.Flight{first, second}, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 2)
	require.Equal(t, first.ID, paths[0][0].ID)
	require.Equal(t, second.ID, paths[0][1].ID)
}

func TestSearch_ConnectionMustDepartAfterArrival(t *testing.T) {
	e := NewEngine()

	first := leg("AMS", "FRA", 8, 11)
	// вылет до прилёта первого и вылет ровно в момент прилёта не годятся
	tooEarly := leg("FRA", "ICN", 10, 21)
	exactTouch := leg("FRA", "ICN", 11, 22)
	fits := leg("FRA", "ICN", 11.5, 22.5)

	paths, err := e.Search(context.Background(), []*models.Flight{first, tooEarly, exactTouch, fits}, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Equal(t, fits.ID, paths[0][1].ID)
}

func TestSearch_MaxLegsBound(t *testing.T) {
	e := NewEngine()

	// Путь AMS -> A -> B -> C -> ICN требует 4 сегмента.
	flights := []*models.Flight{
		leg("AMS", "AAA", 6, 7),
		leg("AAA", "BBB", 8, 9),
		leg("BBB", "CCC", 10, 11),
		leg("CCC", "ICN", 12, 20),
	}

	paths, err := e.Search(context.Background(), flights, "AMS", "ICN", searchDate, 3)
	require.NoError(t, err)
	require.Empty(t, paths)

	paths, err = e.Search(context.Background(), flights, "AMS", "ICN", searchDate, 4)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 4)
}

func TestSearch_FirstLegMustDepartOnRequestedDate(t *testing.T) {
	e := NewEngine()

	dayLater := leg("AMS", "ICN", 30, 41) // вылет на следующий день

	paths, err := e.Search(context.Background(), []*models.Flight{dayLater}, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Empty(t, paths)

	// Но как стыковка после первого сегмента — годится.
	first := leg("AMS", "FRA", 20, 22)
	connecting := leg("FRA", "ICN", 26, 37)
	paths, err = e.Search(context.Background(), []*models.Flight{first, connecting}, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 2)
}

func TestSearch_NoRevisitingAirports(t *testing.T) {
	e := NewEngine()

	// Петля AMS -> FRA -> AMS -> ... не должна зациклить обход.
	flights := []*models.Flight{
		leg("AMS", "FRA", 6, 7),
		leg("FRA", "AMS", 8, 9),
		leg("FRA", "ICN", 10, 21),
	}

	paths, err := e.Search(context.Background(), flights, "AMS", "ICN", searchDate, 5)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestSearch_SortedByFinalArrival(t *testing.T) {
	e := NewEngine()

	late := leg("AMS", "ICN", 12, 23)
	early := leg("AMS", "ICN", 9, 20)
	middle := leg("AMS", "ICN", 10, 21)

	paths, err := e.Search(context.Background(), []*models.Flight{late, early, middle}, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	require.Equal(t, early.ID, paths[0][0].ID)
	require.Equal(t, middle.ID, paths[1][0].ID)
	require.Equal(t, late.ID, paths[2][0].ID)
}

func TestSearch_EmptyResultIsNotAnError(t *testing.T) {
	e := NewEngine()

	paths, err := e.Search(context.Background(), nil, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestSearch_InvalidArguments(t *testing.T) {
	e := NewEngine()

	_, err := e.Search(context.Background(), nil, "", "ICN", searchDate, DefaultMaxLegs)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = e.Search(context.Background(), nil, "AMS", "AMS", searchDate, DefaultMaxLegs)
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestSearch_CancelledContext(t *testing.T) {
	e := NewEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Прямых нет, обход обязан заметить отмену.
	flights := []*models.Flight{
		leg("AMS", "FRA", 8, 9),
		leg("FRA", "ICN", 11, 22),
	}
	_, err := e.Search(ctx, flights, "AMS", "ICN", searchDate, DefaultMaxLegs)
	require.ErrorIs(t, err, context.Canceled)
}
