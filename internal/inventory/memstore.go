package inventory

import (
	"context"
	"fmt"
	"sync"

	"airline_ops/internal/models"

	"github.com/google/uuid"
)

// MemorySeatStore — реализация SeatStore в памяти: тесты и локальный стенд.
type MemorySeatStore struct {
	mu    sync.Mutex
	seats map[uuid.UUID]*models.Seat
}

func NewMemorySeatStore(seats ...*models.Seat) *MemorySeatStore {
	m := &MemorySeatStore{seats: make(map[uuid.UUID]*models.Seat, len(seats))}
	for _, s := range seats {
		m.Add(s)
	}
	return m
}

func (m *MemorySeatStore) Add(seat *models.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *seat
	m.seats[cp.ID] = &cp
}

func (m *MemorySeatStore) SeatsByFlight(_ context.Context, flightID uuid.UUID) ([]*models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Seat
	for _, s := range m.seats {
		if s.FlightID != flightID {
			continue
		}
		cp := *s
		if s.PassengerID != nil {
			pid := *s.PassengerID
			cp.PassengerID = &pid
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemorySeatStore) ClaimSeat(_ context.Context, seatID uuid.UUID, expectedVersion int64, passenger *models.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.seats[seatID]
	if !ok {
		return fmt.Errorf("%w: seat %s", models.ErrNotFound, seatID)
	}
	if s.Version != expectedVersion || !s.Free() {
		return fmt.Errorf("%w: seat %s version changed", models.ErrConflict, s.Number)
	}

	pid := passenger.ID
	s.PassengerID = &pid
	s.Version++
	return nil
}

func (m *MemorySeatStore) ReleaseSeat(_ context.Context, seatID, passengerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.seats[seatID]
	if !ok {
		return fmt.Errorf("%w: seat %s", models.ErrNotFound, seatID)
	}
	if s.PassengerID == nil || *s.PassengerID != passengerID {
		return nil
	}
	s.PassengerID = nil
	s.Version++
	return nil
}

// Seat возвращает копию текущего состояния места (для тестов).
func (m *MemorySeatStore) Seat(seatID uuid.UUID) (*models.Seat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.seats[seatID]
	if !ok {
		return nil, false
	}
	cp := *s
	if s.PassengerID != nil {
		pid := *s.PassengerID
		cp.PassengerID = &pid
	}
	return &cp, true
}
