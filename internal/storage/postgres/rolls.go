package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Roll is one recorded simulated roll.
type Roll struct {
	ID            uuid.UUID
	Expression    string
	Outcome       float64
	ExpectedValue float64
	RolledAt      time.Time
}

// RollRepository persists and queries roll history.
type RollRepository struct {
	db *pgxpool.Pool
}

// NewRollRepository creates a RollRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRollRepository(db *pgxpool.Pool) *RollRepository {
	return &RollRepository{db: db}
}

// Record inserts a roll and returns the stored row.
//
// Precondition: expression must be non-empty.
// Postcondition: Returns the created Roll with ID and RolledAt set, or a
// non-nil error.
func (r *RollRepository) Record(ctx context.Context, expression string, outcome, expectedValue float64) (Roll, error) {
	roll := Roll{
		ID:            uuid.New(),
		Expression:    expression,
		Outcome:       outcome,
		ExpectedValue: expectedValue,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO roll_history (id, expression, outcome, expected_value)
		 VALUES ($1, $2, $3, $4)
		 RETURNING rolled_at`,
		roll.ID, roll.Expression, roll.Outcome, roll.ExpectedValue,
	).Scan(&roll.RolledAt)
	if err != nil {
		return Roll{}, fmt.Errorf("inserting roll: %w", err)
	}
	return roll, nil
}

// Recent returns up to limit rolls, newest first.
//
// Precondition: limit must be >= 1.
func (r *RollRepository) Recent(ctx context.Context, limit int) ([]Roll, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, expression, outcome, expected_value, rolled_at
		 FROM roll_history
		 ORDER BY rolled_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying roll history: %w", err)
	}
	defer rows.Close()

	var rolls []Roll
	for rows.Next() {
		var roll Roll
		if err := rows.Scan(
			&roll.ID, &roll.Expression, &roll.Outcome,
			&roll.ExpectedValue, &roll.RolledAt,
		); err != nil {
			return nil, fmt.Errorf("scanning roll: %w", err)
		}
		rolls = append(rolls, roll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roll history: %w", err)
	}
	return rolls, nil
}

// CountByExpression returns how many recorded rolls used expression.
func (r *RollRepository) CountByExpression(ctx context.Context, expression string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM roll_history WHERE expression = $1`,
		expression,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rolls: %w", err)
	}
	return count, nil
}
