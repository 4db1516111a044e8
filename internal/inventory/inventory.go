package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"airline_ops/internal/models"

	"github.com/google/uuid"
)

// SeatStore — хранилище мест. CAS по версии — единственный механизм защиты
// от двойного бронирования, глобальный лок по рейсу запрещён дизайном:
// места — независимые единицы.
type SeatStore interface {
	SeatsByFlight(ctx context.Context, flightID uuid.UUID) ([]*models.Seat, error)

	// ClaimSeat атомарно сажает пассажира, если версия места не изменилась
	// с момента чтения. При несовпадении — models.ErrConflict.
	ClaimSeat(ctx context.Context, seatID uuid.UUID, expectedVersion int64, passenger *models.Passenger) error

	// ReleaseSeat снимает пассажира, если место занято именно им, и
	// поднимает версию. Свободное или чужое место — no-op.
	ReleaseSeat(ctx context.Context, seatID, passengerID uuid.UUID) error
}

type SeatAssignment struct {
	SeatID    uuid.UUID
	FirstName string
	LastName  string
}

type Inventory struct {
	store SeatStore
}

func New(store SeatStore) *Inventory {
	return &Inventory{store: store}
}

// Book — бронирование всё-или-ничего. Читаем места рейса, проверяем что
// запрошенные принадлежат рейсу и свободны, затем занимаем по одному через
// CAS. Проигранная гонка на любом месте откатывает уже занятые и
// возвращает Conflict; автоматических повторов нет — ретрай на совести
// вызывающего.
func (inv *Inventory) Book(ctx context.Context, flightID uuid.UUID, assignments []SeatAssignment) (*models.Booking, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: at least one seat is required", models.ErrValidation)
	}
	for _, a := range assignments {
		if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
			return nil, fmt.Errorf("%w: passenger name is required for seat %s", models.ErrValidation, a.SeatID)
		}
	}
	requested := make(map[uuid.UUID]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := requested[a.SeatID]; ok {
			return nil, fmt.Errorf("%w: seat %s is requested twice", models.ErrValidation, a.SeatID)
		}
		requested[a.SeatID] = struct{}{}
	}

	seats, err := inv.store.SeatsByFlight(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("load seats for flight %s: %w", flightID, err)
	}
	byID := make(map[uuid.UUID]*models.Seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}

	// Вся заявка должна быть подмножеством мест рейса, и все места свободны.
	for _, a := range assignments {
		seat, ok := byID[a.SeatID]
		if !ok {
			return nil, fmt.Errorf("%w: seat %s is not on flight %s", models.ErrValidation, a.SeatID, flightID)
		}
		if !seat.Free() {
			return nil, fmt.Errorf("%w: seat %s is already booked", models.ErrConflict, seat.Number)
		}
	}

	booked := make([]models.BookedSeat, 0, len(assignments))
	for _, a := range assignments {
		seat := byID[a.SeatID]
		passenger := &models.Passenger{
			ID:        uuid.New(),
			FirstName: strings.TrimSpace(a.FirstName),
			LastName:  strings.TrimSpace(a.LastName),
		}

		if err := inv.store.ClaimSeat(ctx, seat.ID, seat.Version, passenger); err != nil {
			// Частично применённой брони остаться не должно.
			inv.rollback(ctx, booked)
			if errors.Is(err, models.ErrConflict) {
				return nil, fmt.Errorf("%w: seat %s lost to a concurrent booking", models.ErrConflict, seat.Number)
			}
			return nil, fmt.Errorf("claim seat %s: %w", seat.Number, err)
		}

		claimed := *seat
		claimed.Version = seat.Version + 1
		pid := passenger.ID
		claimed.PassengerID = &pid
		booked = append(booked, models.BookedSeat{Seat: &claimed, Passenger: passenger})
	}

	return &models.Booking{
		ID:       uuid.New(),
		FlightID: flightID,
		Seats:    booked,
	}, nil
}

// Release снимает пассажиров со всех мест брони. Уже свободное место —
// no-op, не ошибка.
func (inv *Inventory) Release(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("%w: booking is required", models.ErrValidation)
	}
	for _, bs := range booking.Seats {
		if bs.Passenger == nil {
			continue
		}
		if err := inv.store.ReleaseSeat(ctx, bs.Seat.ID, bs.Passenger.ID); err != nil {
			return fmt.Errorf("release seat %s: %w", bs.Seat.Number, err)
		}
	}
	return nil
}

func (inv *Inventory) rollback(ctx context.Context, booked []models.BookedSeat) {
	for _, bs := range booked {
		_ = inv.store.ReleaseSeat(ctx, bs.Seat.ID, bs.Passenger.ID)
	}
}
