package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"airline_ops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func seat(flightID uuid.UUID, number string) *models.Seat {
	return &models.Seat{
		ID:       uuid.New(),
		FlightID: flightID,
		Number:   number,
		Class:    models.SeatClassEconomy,
		Price:    models.Money{Amount: 45000, Currency: "EUR"},
	}
}

func TestBook_Validation(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	inv := New(NewMemorySeatStore(s1))

	t.Run("no seats", func(t *testing.T) {
		_, err := inv.Book(ctx, flightID, nil)
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("empty passenger name", func(t *testing.T) {
		_, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: " ", LastName: "Kim"}})
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("same seat twice", func(t *testing.T) {
		_, err := inv.Book(ctx, flightID, []SeatAssignment{
			{SeatID: s1.ID, FirstName: "Min", LastName: "Kim"},
			{SeatID: s1.ID, FirstName: "Jae", LastName: "Lee"},
		})
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("seat from another flight", func(t *testing.T) {
		foreign := seat(uuid.New(), "1A")
		inv := New(NewMemorySeatStore(s1, foreign))
		_, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: foreign.ID, FirstName: "Min", LastName: "Kim"}})
		require.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestBook_AlreadyBookedSeatIsConflict(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	inv := New(NewMemorySeatStore(s1))

	_, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: "Min", LastName: "Kim"}})
	require.NoError(t, err)

	_, err = inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: "Jae", LastName: "Lee"}})
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestBook_SetsPassengerAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	store := NewMemorySeatStore(s1)
	inv := New(store)

	booking, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: "Min", LastName: "Kim"}})
	require.NoError(t, err)
	require.Len(t, booking.Seats, 1)
	require.Equal(t, int64(1), booking.Seats[0].Seat.Version)
	require.Equal(t, "Min", booking.Seats[0].Passenger.FirstName)

	stored, ok := store.Seat(s1.ID)
	require.True(t, ok)
	require.False(t, stored.Free())
	require.Equal(t, booking.Seats[0].Passenger.ID, *stored.PassengerID)
	require.Equal(t, int64(1), stored.Version)
}

func TestBook_ConcurrentClaimOneWinner(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	inv := New(NewMemorySeatStore(s1))

	const workers = 32

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = inv.Book(ctx, flightID, []SeatAssignment{
				{SeatID: s1.ID, FirstName: "P", LastName: "N"},
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(t, err, models.ErrConflict)
	}
	require.Equal(t, 1, won)
}

func TestBook_PartialFailureRollsBackClaimedSeats(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	s2 := seat(flightID, "12B")
	store := NewMemorySeatStore(s1, s2)

	// Чужая бронь вклинивается между чтением мест и CAS.
	racey := &raceyStore{
		MemorySeatStore: store,
		afterRead: func() {
			rival := &models.Passenger{ID: uuid.New(), FirstName: "Rival", LastName: "R"}
			require.NoError(t, store.ClaimSeat(ctx, s2.ID, 0, rival))
		},
	}
	inv := New(racey)

	_, err := inv.Book(ctx, flightID, []SeatAssignment{
		{SeatID: s1.ID, FirstName: "Min", LastName: "Kim"},
		{SeatID: s2.ID, FirstName: "Jae", LastName: "Lee"},
	})
	require.ErrorIs(t, err, models.ErrConflict)

	// s1 успели занять — должен быть освобождён.
	freed, ok := store.Seat(s1.ID)
	require.True(t, ok)
	require.True(t, freed.Free())
}

func TestRelease_Idempotent(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	store := NewMemorySeatStore(s1)
	inv := New(store)

	booking, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: "Min", LastName: "Kim"}})
	require.NoError(t, err)

	require.NoError(t, inv.Release(ctx, booking))
	freed, _ := store.Seat(s1.ID)
	require.True(t, freed.Free())
	versionAfterRelease := freed.Version

	// Повторный Release — no-op, версия не двигается.
	require.NoError(t, inv.Release(ctx, booking))
	again, _ := store.Seat(s1.ID)
	require.Equal(t, versionAfterRelease, again.Version)
}

func TestRelease_DoesNotTouchSeatTakenByAnother(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()
	s1 := seat(flightID, "12A")
	store := NewMemorySeatStore(s1)
	inv := New(store)

	first, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: "Min", LastName: "Kim"}})
	require.NoError(t, err)
	require.NoError(t, inv.Release(ctx, first))

	second, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: s1.ID, FirstName: "Jae", LastName: "Lee"}})
	require.NoError(t, err)

	// Release устаревшей брони не выселяет нового пассажира.
	require.NoError(t, inv.Release(ctx, first))
	current, _ := store.Seat(s1.ID)
	require.False(t, current.Free())
	require.Equal(t, second.Seats[0].Passenger.ID, *current.PassengerID)
}

func TestBook_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	flightID := uuid.New()

	inv := New(failingStore{})
	_, err := inv.Book(ctx, flightID, []SeatAssignment{{SeatID: uuid.New(), FirstName: "A", LastName: "B"}})
	require.Error(t, err)
	require.False(t, errors.Is(err, models.ErrValidation))
}

// raceyStore дёргает afterRead один раз сразу после чтения мест.
type raceyStore struct {
	*MemorySeatStore
	afterRead func()
	once      sync.Once
}

func (r *raceyStore) SeatsByFlight(ctx context.Context, flightID uuid.UUID) ([]*models.Seat, error) {
	seats, err := r.MemorySeatStore.SeatsByFlight(ctx, flightID)
	r.once.Do(r.afterRead)
	return seats, err
}

type failingStore struct{}

func (failingStore) SeatsByFlight(context.Context, uuid.UUID) ([]*models.Seat, error) {
	return nil, errors.New("store down")
}
func (failingStore) ClaimSeat(context.Context, uuid.UUID, int64, *models.Passenger) error {
	return errors.New("store down")
}
func (failingStore) ReleaseSeat(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("store down")
}
