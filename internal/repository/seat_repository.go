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

// SeatRepository реализует inventory.SeatStore поверх Postgres.
// CAS — это UPDATE ... WHERE id AND version: проигранная гонка видна по
// RowsAffected == 0.
type SeatRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSeatRepository(db *pgxpool.Pool) *SeatRepository {
	return &SeatRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SeatRepository) SeatsByFlight(ctx context.Context, flightID uuid.UUID) ([]*models.Seat, error) {
	query := r.sb.
		Select("id", "flight_id", "seat_number", "seat_class", "amount", "currency", "passenger_id", "version").
		From("seats").
		Where(sq.Eq{"flight_id": flightID}).
		OrderBy("seat_number ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select seats sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select seats: %w", err)
	}
	defer rows.Close()

	var out []*models.Seat
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(
			&s.ID, &s.FlightID, &s.Number, &s.Class,
			&s.Price.Amount, &s.Price.Currency, &s.PassengerID, &s.Version,
		); err != nil {
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat rows: %w", err)
	}

	return out, nil
}

// ClaimSeat: пассажир и посадка в одной транзакции. Несовпадение версии
// (или место уже занято) — Conflict, частичного эффекта не остаётся.
func (r *SeatRepository) ClaimSeat(ctx context.Context, seatID uuid.UUID, expectedVersion int64, passenger *models.Passenger) error {
	if passenger == nil {
		return fmt.Errorf("passenger is nil")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := r.sb.
		Insert("passengers").
		Columns("id", "first_name", "last_name").
		Values(passenger.ID, passenger.FirstName, passenger.LastName)

	sqlStr, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert passenger sql: %w", err)
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert passenger: %w", err)
	}

	update := r.sb.
		Update("seats").
		Set("passenger_id", passenger.ID).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": seatID, "version": expectedVersion}).
		Where("passenger_id IS NULL")

	sqlStr, args, err = update.ToSql()
	if err != nil {
		return fmt.Errorf("build claim seat sql: %w", err)
	}

	tag, err := tx.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("claim seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: seat %s version changed", models.ErrConflict, seatID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ReleaseSeat: снятие только своего пассажира; свободное или чужое место —
// no-op. Версия растёт при каждой успешной мутации.
func (r *SeatRepository) ReleaseSeat(ctx context.Context, seatID, passengerID uuid.UUID) error {
	update := r.sb.
		Update("seats").
		Set("passenger_id", nil).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": seatID, "passenger_id": passengerID})

	sqlStr, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build release seat sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// 0 строк: либо место уже свободно/занято другим (no-op), либо его нет.
	check := r.sb.Select("id").From("seats").Where(sq.Eq{"id": seatID}).Limit(1)
	sqlStr, args, err = check.ToSql()
	if err != nil {
		return fmt.Errorf("build check seat sql: %w", err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: seat %s", models.ErrNotFound, seatID)
		}
		return fmt.Errorf("check seat: %w", err)
	}
	return nil
}

// FreeSeatCounts — сколько свободных мест на каждом из рейсов; рейсы без
// единого свободного места поиск отбрасывает заранее.
func (r *SeatRepository) FreeSeatCounts(ctx context.Context, flightIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(flightIDs))
	if len(flightIDs) == 0 {
		return out, nil
	}

	query := r.sb.
		Select("flight_id", "COUNT(*)").
		From("seats").
		Where(sq.Eq{"flight_id": flightIDs}).
		Where("passenger_id IS NULL").
		GroupBy("flight_id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build free seats sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("count free seats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  uuid.UUID
			cnt int64
		)
		if err := rows.Scan(&id, &cnt); err != nil {
			return nil, fmt.Errorf("scan free seats row: %w", err)
		}
		out[id] = int(cnt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate free seats rows: %w", err)
	}

	return out, nil
}
