package models

import "time"

type ScheduleResponse struct {
	DepartureIata  string    `json:"departure_iata"`
	ArrivalIata    string    `json:"arrival_iata"`
	DepartureLocal string    `json:"departure_local"`
	ArrivalLocal   string    `json:"arrival_local"`
	DepartureAt    time.Time `json:"departure_at"`
	ArrivalAt      time.Time `json:"arrival_at"`
	Duration       string    `json:"duration"`
	Policy         string    `json:"policy"`
}

type FlightResponse struct {
	ID            string           `json:"id"`
	IataNumber    string           `json:"iata_number"`
	IcaoNumber    string           `json:"icao_number"`
	Status        string           `json:"status"`
	Schedule      ScheduleResponse `json:"schedule"`
	AircraftID    string           `json:"aircraft_id"`
	EconomyPrice  Money            `json:"economy_price"`
	BusinessPrice Money            `json:"business_price"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func NewFlightResponse(f *Flight) FlightResponse {
	s := f.Schedule
	return FlightResponse{
		ID:         f.ID.String(),
		IataNumber: f.IataNumber,
		IcaoNumber: f.IcaoNumber,
		Status:     string(f.Status),
		Schedule: ScheduleResponse{
			DepartureIata:  s.DepartureAirport.IataCode,
			ArrivalIata:    s.ArrivalAirport.IataCode,
			DepartureLocal: s.DepartureLocal.Format("2006-01-02T15:04"),
			ArrivalLocal:   s.ArrivalLocal.Format("2006-01-02T15:04"),
			DepartureAt:    s.DepartureAt,
			ArrivalAt:      s.ArrivalAt,
			Duration:       s.Duration().String(),
			Policy:         string(s.Policy),
		},
		AircraftID:    f.Aircraft.ID.String(),
		EconomyPrice:  f.EconomyPrice,
		BusinessPrice: f.BusinessPrice,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// JourneyResponse — один найденный маршрут: сегменты по порядку.
type JourneyResponse struct {
	Legs      []FlightResponse `json:"legs"`
	ArrivalAt time.Time        `json:"arrival_at"` // прилёт последнего сегмента
}

type SearchResponse struct {
	DepartureIata string            `json:"departure_iata"`
	ArrivalIata   string            `json:"arrival_iata"`
	Date          string            `json:"date"`
	Journeys      []JourneyResponse `json:"journeys"`
}

func NewSearchResponse(from, to, date string, paths [][]*Flight) SearchResponse {
	journeys := make([]JourneyResponse, 0, len(paths))
	for _, path := range paths {
		legs := make([]FlightResponse, 0, len(path))
		for _, f := range path {
			legs = append(legs, NewFlightResponse(f))
		}
		journeys = append(journeys, JourneyResponse{
			Legs:      legs,
			ArrivalAt: path[len(path)-1].Schedule.ArrivalAt,
		})
	}
	return SearchResponse{
		DepartureIata: from,
		ArrivalIata:   to,
		Date:          date,
		Journeys:      journeys,
	}
}

type BookedSeatResponse struct {
	SeatID     string `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
	Class      string `json:"class"`
	Price      Money  `json:"price"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

type BookingResponse struct {
	ID        string               `json:"id"`
	FlightID  string               `json:"flight_id"`
	Cancelled bool                 `json:"cancelled"`
	Seats     []BookedSeatResponse `json:"seats"`
}

type ItineraryResponse struct {
	ID           string            `json:"id"`
	Reference    string            `json:"reference"`
	ContactEmail string            `json:"contact_email,omitempty"`
	Bookings     []BookingResponse `json:"bookings"`
	TotalPrice   Money             `json:"total_price"`
	CreatedAt    time.Time         `json:"created_at"`
}

func NewItineraryResponse(it *Itinerary) (ItineraryResponse, error) {
	total, err := it.TotalPrice()
	if err != nil {
		return ItineraryResponse{}, err
	}

	bookings := make([]BookingResponse, 0, len(it.Bookings))
	for _, b := range it.Bookings {
		seats := make([]BookedSeatResponse, 0, len(b.Seats))
		for _, bs := range b.Seats {
			seats = append(seats, BookedSeatResponse{
				SeatID:     bs.Seat.ID.String(),
				SeatNumber: bs.Seat.Number,
				Class:      string(bs.Seat.Class),
				Price:      bs.Seat.Price,
				FirstName:  bs.Passenger.FirstName,
				LastName:   bs.Passenger.LastName,
			})
		}
		bookings = append(bookings, BookingResponse{
			ID:        b.ID.String(),
			FlightID:  b.FlightID.String(),
			Cancelled: b.Cancelled,
			Seats:     seats,
		})
	}

	return ItineraryResponse{
		ID:           it.ID.String(),
		Reference:    it.Reference,
		ContactEmail: it.ContactEmail,
		Bookings:     bookings,
		TotalPrice:   total,
		CreatedAt:    it.CreatedAt,
	}, nil
}
