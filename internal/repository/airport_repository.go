package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"airline_ops/internal/models"
	sq "github.com/Masterminds/squirrel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAirportRepository(db *pgxpool.Pool) *AirportRepository {
	return &AirportRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AirportRepository) GetByIata(ctx context.Context, iata string) (*models.Airport, error) {
	iata = strings.ToUpper(strings.TrimSpace(iata))
	if len(iata) != 3 {
		return nil, fmt.Errorf("%w: iata code must be 3 letters", models.ErrValidation)
	}

	query := r.sb.
		Select("id", "iata_code", "icao_code", "name", "timezone").
		From("airports").
		Where(sq.Eq{"iata_code": iata}).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get airport sql: %w", err)
	}

	var a models.Airport
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&a.ID, &a.IataCode, &a.IcaoCode, &a.Name, &a.Timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: airport %s", models.ErrNotFound, iata)
		}
		return nil, fmt.Errorf("get airport: %w", err)
	}

	return &a, nil
}

func (r *AirportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Airport, error) {
	query := r.sb.
		Select("id", "iata_code", "icao_code", "name", "timezone").
		From("airports").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get airport sql: %w", err)
	}

	var a models.Airport
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&a.ID, &a.IataCode, &a.IcaoCode, &a.Name, &a.Timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: airport %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get airport: %w", err)
	}

	return &a, nil
}
