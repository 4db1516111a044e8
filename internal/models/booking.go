package models

import (
	"time"

	"github.com/google/uuid"
)

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
)

func (c SeatClass) Valid() bool {
	return c == SeatClassEconomy || c == SeatClassBusiness
}

// Seat принадлежит ровно одному рейсу. Занятое место слабо ссылается на
// пассажира: снять пассажира — освободить место, а не удалить его.
// Version — токен оптимистической блокировки, растёт при каждой
// успешной мутации места.
type Seat struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	FlightID    uuid.UUID  `json:"flight_id" db:"flight_id"`
	Number      string     `json:"number" db:"seat_number"` // например "12A"
	Class       SeatClass  `json:"class" db:"seat_class"`
	Price       Money      `json:"price"`
	PassengerID *uuid.UUID `json:"passenger_id,omitempty" db:"passenger_id"`
	Version     int64      `json:"version" db:"version"`
}

func (s *Seat) Free() bool { return s.PassengerID == nil }

// Passenger принадлежит создавшему его бронированию.
type Passenger struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
}

type BookedSeat struct {
	Seat      *Seat      `json:"seat"`
	Passenger *Passenger `json:"passenger"`
}

// Booking — один сегмент маршрута: рейс и пары (место -> пассажир).
type Booking struct {
	ID          uuid.UUID    `json:"id"`
	ItineraryID uuid.UUID    `json:"itinerary_id"`
	FlightID    uuid.UUID    `json:"flight_id"`
	Seats       []BookedSeat `json:"seats"`
	Cancelled   bool         `json:"cancelled"`
}

// Itinerary — сквозной маршрут пассажира: упорядоченные бронирования,
// по одному на сегмент. Итоговая цена — вычисляемая проекция.
type Itinerary struct {
	ID           uuid.UUID  `json:"id"`
	Reference    string     `json:"reference"`
	ContactEmail string     `json:"contact_email,omitempty"`
	Bookings     []*Booking `json:"bookings"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (i *Itinerary) TotalPrice() (Money, error) {
	var total Money
	for _, b := range i.Bookings {
		if b.Cancelled {
			continue
		}
		for _, bs := range b.Seats {
			sum, err := total.Add(bs.Seat.Price)
			if err != nil {
				return Money{}, err
			}
			total = sum
		}
	}
	return total, nil
}
