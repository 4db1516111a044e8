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

type AircraftRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAircraftRepository(db *pgxpool.Pool) *AircraftRepository {
	return &AircraftRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AircraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Aircraft, error) {
	query := r.sb.
		Select("id", "model", "registration").
		From("aircraft").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get aircraft sql: %w", err)
	}

	var a models.Aircraft
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&a.ID, &a.Model, &a.Registration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: aircraft %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get aircraft: %w", err)
	}

	return &a, nil
}
