package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-scheduler/internal/domain/medications"
)

type SkipsRepo struct {
	db *sql.DB
}

func NewSkipsRepo(db *sql.DB) *SkipsRepo {
	return &SkipsRepo{db: db}
}

func (r *SkipsRepo) Create(ctx context.Context, s medications.SkipDate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_skip_dates (
			id, medication_id, skip_date, reason, created_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		s.ID,
		s.MedicationID,
		s.Date,
		s.Reason,
		s.CreatedAt,
	)
	return err
}

func (r *SkipsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medication_skip_dates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SkipsRepo) GetByID(ctx context.Context, id string) (medications.SkipDate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.SkipDate{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, skip_date, reason, created_at
		FROM medication_skip_dates
		WHERE id = $1
	`, id)

	var s medications.SkipDate
	if err := row.Scan(&s.ID, &s.MedicationID, &s.Date, &s.Reason, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return medications.SkipDate{}, ErrNotFound
		}
		return medications.SkipDate{}, err
	}
	return s, nil
}

func (r *SkipsRepo) ListByMedication(ctx context.Context, medicationID string) ([]medications.SkipDate, error) {
	return r.list(ctx, []string{strings.TrimSpace(medicationID)})
}

func (r *SkipsRepo) ListByMedications(ctx context.Context, medicationIDs []string) ([]medications.SkipDate, error) {
	return r.list(ctx, medicationIDs)
}

func (r *SkipsRepo) list(ctx context.Context, medicationIDs []string) ([]medications.SkipDate, error) {
	if len(medicationIDs) == 0 {
		return []medications.SkipDate{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, medication_id, skip_date, reason, created_at
		FROM medication_skip_dates
		WHERE medication_id = ANY($1)
		ORDER BY skip_date ASC
	`, pgTextArray(medicationIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.SkipDate, 0)
	for rows.Next() {
		var s medications.SkipDate
		if err := rows.Scan(&s.ID, &s.MedicationID, &s.Date, &s.Reason, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
