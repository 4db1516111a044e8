package repository

import (
	"context"
	"errors"
	"fmt"

	"airline_ops/internal/models"
	sq "github.com/Masterminds/squirrel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateItinerary пишет маршрут, его бронирования и пары место-пассажир
// одной транзакцией. Пассажиры уже вставлены ClaimSeat-ом.
func (r *BookingRepository) CreateItinerary(ctx context.Context, it *models.Itinerary) error {
	if it == nil || len(it.Bookings) == 0 {
		return fmt.Errorf("itinerary is nil or empty")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := r.sb.
		Insert("itineraries").
		Columns("id", "reference", "contact_email", "created_at").
		Values(it.ID, it.Reference, nullIfEmpty(it.ContactEmail), it.CreatedAt)

	sqlStr, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert itinerary sql: %w", err)
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert itinerary: %w", err)
	}

	for pos, b := range it.Bookings {
		insert := r.sb.
			Insert("bookings").
			Columns("id", "itinerary_id", "flight_id", "leg_order", "cancelled").
			Values(b.ID, it.ID, b.FlightID, pos, b.Cancelled)

		sqlStr, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert booking sql: %w", err)
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		for _, bs := range b.Seats {
			insert := r.sb.
				Insert("booking_seats").
				Columns("booking_id", "seat_id", "passenger_id").
				Values(b.ID, bs.Seat.ID, bs.Passenger.ID)

			sqlStr, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("build insert booking seat sql: %w", err)
			}
			if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("insert booking seat: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetItinerary(ctx context.Context, id uuid.UUID) (*models.Itinerary, error) {
	query := r.sb.
		Select("id", "reference", "COALESCE(contact_email, '')", "created_at").
		From("itineraries").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get itinerary sql: %w", err)
	}

	var it models.Itinerary
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&it.ID, &it.Reference, &it.ContactEmail, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: itinerary %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get itinerary: %w", err)
	}

	bookings, err := r.bookingsByItinerary(ctx, it.ID)
	if err != nil {
		return nil, err
	}
	it.Bookings = bookings

	return &it, nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := r.sb.
		Select("id", "itinerary_id", "flight_id", "cancelled").
		From("bookings").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking sql: %w", err)
	}

	var b models.Booking
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&b.ID, &b.ItineraryID, &b.FlightID, &b.Cancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	seats, err := r.seatsByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Seats = seats

	return &b, nil
}

func (r *BookingRepository) MarkBookingCancelled(ctx context.Context, id uuid.UUID) error {
	update := r.sb.
		Update("bookings").
		Set("cancelled", true).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build cancel booking sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %s", models.ErrNotFound, id)
	}
	return nil
}

// CountActiveBookings — охранное условие удаления рейса.
func (r *BookingRepository) CountActiveBookings(ctx context.Context, flightID uuid.UUID) (int, error) {
	query := r.sb.
		Select("COUNT(*)").
		From("bookings").
		Where(sq.Eq{"flight_id": flightID, "cancelled": false})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings sql: %w", err)
	}

	var cnt int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&cnt); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return int(cnt), nil
}

func (r *BookingRepository) bookingsByItinerary(ctx context.Context, itineraryID uuid.UUID) ([]*models.Booking, error) {
	query := r.sb.
		Select("id", "itinerary_id", "flight_id", "cancelled").
		From("bookings").
		Where(sq.Eq{"itinerary_id": itineraryID}).
		OrderBy("leg_order ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []*models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.ItineraryID, &b.FlightID, &b.Cancelled); err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	for _, b := range out {
		seats, err := r.seatsByBooking(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Seats = seats
	}

	return out, nil
}

func (r *BookingRepository) seatsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.BookedSeat, error) {
	query := r.sb.
		Select(
			"s.id", "s.flight_id", "s.seat_number", "s.seat_class", "s.amount", "s.currency", "s.passenger_id", "s.version",
			"p.id", "p.first_name", "p.last_name",
		).
		From("booking_seats bs").
		Join("seats s ON s.id = bs.seat_id").
		Join("passengers p ON p.id = bs.passenger_id").
		Where(sq.Eq{"bs.booking_id": bookingID}).
		OrderBy("s.seat_number ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking seats sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list booking seats: %w", err)
	}
	defer rows.Close()

	var out []models.BookedSeat
	for rows.Next() {
		var (
			s models.Seat
			p models.Passenger
		)
		if err := rows.Scan(
			&s.ID, &s.FlightID, &s.Number, &s.Class, &s.Price.Amount, &s.Price.Currency, &s.PassengerID, &s.Version,
			&p.ID, &p.FirstName, &p.LastName,
		); err != nil {
			return nil, fmt.Errorf("scan booking seat row: %w", err)
		}
		out = append(out, models.BookedSeat{Seat: &s, Passenger: &p})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking seat rows: %w", err)
	}

	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
