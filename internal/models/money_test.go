package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoney_Add(t *testing.T) {
	a := Money{Amount: 100, Currency: "EUR"}
	b := Money{Amount: 250, Currency: "EUR"}

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, Money{Amount: 350, Currency: "EUR"}, sum)

	_, err = a.Add(Money{Amount: 10, Currency: "USD"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestMoney_AddToZeroAdoptsCurrency(t *testing.T) {
	var total Money
	sum, err := total.Add(Money{Amount: 500, Currency: "KRW"})
	require.NoError(t, err)
	require.Equal(t, "KRW", sum.Currency)
}

func TestItinerary_TotalPriceSkipsCancelled(t *testing.T) {
	seatOf := func(amount int64) BookedSeat {
		return BookedSeat{Seat: &Seat{Price: Money{Amount: amount, Currency: "EUR"}}}
	}

	it := &Itinerary{
		Bookings: []*Booking{
			{Seats: []BookedSeat{seatOf(100), seatOf(200)}},
			{Seats: []BookedSeat{seatOf(400)}, Cancelled: true},
		},
	}

	total, err := it.TotalPrice()
	require.NoError(t, err)
	require.Equal(t, int64(300), total.Amount)
}
