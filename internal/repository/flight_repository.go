package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airline_ops/internal/models"
	sq "github.com/Masterminds/squirrel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewFlightRepository(db *pgxpool.Pool) *FlightRepository {
	return &FlightRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var flightColumns = []string{
	"f.id", "f.iata_number", "f.icao_number", "f.status",
	"f.departure_local", "f.arrival_local", "f.departure_at", "f.arrival_at", "f.policy",
	"f.economy_amount", "f.economy_currency", "f.business_amount", "f.business_currency",
	"f.created_at", "f.updated_at",
	"da.id", "da.iata_code", "da.icao_code", "da.name", "da.timezone",
	"aa.id", "aa.iata_code", "aa.icao_code", "aa.name", "aa.timezone",
	"ac.id", "ac.model", "ac.registration",
}

func (r *FlightRepository) selectFlights() sq.SelectBuilder {
	return r.sb.
		Select(flightColumns...).
		From("flights f").
		Join("airports da ON da.id = f.departure_airport_id").
		Join("airports aa ON aa.id = f.arrival_airport_id").
		Join("aircraft ac ON ac.id = f.aircraft_id")
}

func scanFlight(row pgx.Row) (*models.Flight, error) {
	var (
		f   models.Flight
		s   models.Schedule
		dep models.Airport
		arr models.Airport
		ac  models.Aircraft
	)

	err := row.Scan(
		&f.ID, &f.IataNumber, &f.IcaoNumber, &f.Status,
		&s.DepartureLocal, &s.ArrivalLocal, &s.DepartureAt, &s.ArrivalAt, &s.Policy,
		&f.EconomyPrice.Amount, &f.EconomyPrice.Currency, &f.BusinessPrice.Amount, &f.BusinessPrice.Currency,
		&f.CreatedAt, &f.UpdatedAt,
		&dep.ID, &dep.IataCode, &dep.IcaoCode, &dep.Name, &dep.Timezone,
		&arr.ID, &arr.IataCode, &arr.IcaoCode, &arr.Name, &arr.Timezone,
		&ac.ID, &ac.Model, &ac.Registration,
	)
	if err != nil {
		return nil, err
	}

	s.DepartureAirport = &dep
	s.ArrivalAirport = &arr
	f.Schedule = &s
	f.Aircraft = &ac
	return &f, nil
}

func (r *FlightRepository) Create(ctx context.Context, f *models.Flight) error {
	if f == nil || f.Schedule == nil {
		return fmt.Errorf("flight or schedule is nil")
	}

	query := r.sb.
		Insert("flights").
		Columns(
			"id", "iata_number", "icao_number", "status",
			"departure_airport_id", "arrival_airport_id",
			"departure_local", "arrival_local", "departure_at", "arrival_at", "policy",
			"aircraft_id",
			"economy_amount", "economy_currency", "business_amount", "business_currency",
			"created_at", "updated_at",
		).
		Values(
			f.ID, f.IataNumber, f.IcaoNumber, f.Status,
			f.Schedule.DepartureAirport.ID, f.Schedule.ArrivalAirport.ID,
			f.Schedule.DepartureLocal, f.Schedule.ArrivalLocal, f.Schedule.DepartureAt, f.Schedule.ArrivalAt, f.Schedule.Policy,
			f.Aircraft.ID,
			f.EconomyPrice.Amount, f.EconomyPrice.Currency, f.BusinessPrice.Amount, f.BusinessPrice.Currency,
			f.CreatedAt, f.UpdatedAt,
		)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert flight sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}

	return nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	query := r.selectFlights().Where(sq.Eq{"f.id": id}).Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get flight sql: %w", err)
	}

	f, err := scanFlight(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: flight %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return f, nil
}

// ListByDepartureWindow — кандидаты для поиска: рейсы с локальной датой
// вылета в [from, to).
func (r *FlightRepository) ListByDepartureWindow(ctx context.Context, from, to time.Time) ([]*models.Flight, error) {
	query := r.selectFlights().
		Where(sq.GtOrEq{"f.departure_local": from}).
		Where(sq.Lt{"f.departure_local": to}).
		OrderBy("f.departure_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list flights sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	var out []*models.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight row: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flight rows: %w", err)
	}

	return out, nil
}

// Update перезаписывает изменяемую часть агрегата: расписание, статус,
// цены, борт, updated_at. Один писатель на рейс — забота транзакционной
// границы вызывающего.
func (r *FlightRepository) Update(ctx context.Context, f *models.Flight) error {
	return r.update(ctx, r.db, f)
}

func (r *FlightRepository) UpdateTx(ctx context.Context, tx pgx.Tx, f *models.Flight) error {
	return r.update(ctx, tx, f)
}

// pgx.Tx и pgxpool.Pool оба подходят.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *FlightRepository) update(ctx context.Context, db execer, f *models.Flight) error {
	if f == nil || f.Schedule == nil {
		return fmt.Errorf("flight or schedule is nil")
	}

	query := r.sb.
		Update("flights").
		Set("status", f.Status).
		Set("departure_airport_id", f.Schedule.DepartureAirport.ID).
		Set("arrival_airport_id", f.Schedule.ArrivalAirport.ID).
		Set("departure_local", f.Schedule.DepartureLocal).
		Set("arrival_local", f.Schedule.ArrivalLocal).
		Set("departure_at", f.Schedule.DepartureAt).
		Set("arrival_at", f.Schedule.ArrivalAt).
		Set("policy", f.Schedule.Policy).
		Set("aircraft_id", f.Aircraft.ID).
		Set("economy_amount", f.EconomyPrice.Amount).
		Set("economy_currency", f.EconomyPrice.Currency).
		Set("business_amount", f.BusinessPrice.Amount).
		Set("business_currency", f.BusinessPrice.Currency).
		Set("updated_at", f.UpdatedAt).
		Where(sq.Eq{"id": f.ID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build update flight sql: %w", err)
	}

	tag, err := db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update flight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: flight %s", models.ErrNotFound, f.ID)
	}
	return nil
}

// Delete удаляет рейс. Охранное условие (нет активных бронирований либо
// рейс давно прибыл) проверяет сервисный слой.
func (r *FlightRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.sb.Delete("flights").Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build delete flight sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: flight %s", models.ErrNotFound, id)
	}
	return nil
}
