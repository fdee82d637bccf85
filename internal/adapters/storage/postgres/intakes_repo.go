package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"med-scheduler/internal/domain/intakes"
)

type IntakesRepo struct {
	db *sql.DB
}

func NewIntakesRepo(db *sql.DB) *IntakesRepo {
	return &IntakesRepo{db: db}
}

func (r *IntakesRepo) Create(ctx context.Context, l intakes.IntakeLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_intakes (
			id, medication_id, dose_id,
			amount, taken_at, notes, status,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		l.ID,
		l.MedicationID,
		l.DoseID,
		l.Amount,
		l.TakenAt,
		l.Notes,
		l.Status,
		l.CreatedAt,
	)
	return err
}

func (r *IntakesRepo) GetByID(ctx context.Context, id string) (intakes.IntakeLog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return intakes.IntakeLog{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, dose_id, amount, taken_at, notes, status, created_at
		FROM medication_intakes
		WHERE id = $1
	`, id)

	var l intakes.IntakeLog
	if err := row.Scan(
		&l.ID,
		&l.MedicationID,
		&l.DoseID,
		&l.Amount,
		&l.TakenAt,
		&l.Notes,
		&l.Status,
		&l.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return intakes.IntakeLog{}, ErrNotFound
		}
		return intakes.IntakeLog{}, err
	}
	return l, nil
}

func (r *IntakesRepo) ListByMedication(ctx context.Context, medicationID string, filter intakes.ListFilter) ([]intakes.IntakeLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	// Filtros opcionales: la query se arma con placeholders incrementales.
	query := `
		SELECT id, medication_id, dose_id, amount, taken_at, notes, status, created_at
		FROM medication_intakes
		WHERE medication_id = $1
	`
	args := []any{medicationID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND taken_at >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND taken_at <= $` + strconv.Itoa(len(args))
	}

	args = append(args, limit)
	query += ` ORDER BY taken_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]intakes.IntakeLog, 0)
	for rows.Next() {
		var l intakes.IntakeLog
		if err := rows.Scan(
			&l.ID,
			&l.MedicationID,
			&l.DoseID,
			&l.Amount,
			&l.TakenAt,
			&l.Notes,
			&l.Status,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *IntakesRepo) Void(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medication_intakes SET status = $2 WHERE id = $1
	`, id, intakes.StatusVoided)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
