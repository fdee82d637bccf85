package postgres

import (
	"context"
	"database/sql"
	"strings"

	"med-scheduler/internal/domain/medications"
)

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) Create(ctx context.Context, d medications.Dose) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_doses (
			id, medication_id,
			time_of_day, amount, route_override, instructions,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		d.ID,
		d.MedicationID,
		d.TimeOfDay,
		d.Amount,
		d.RouteOverride,
		d.Instructions,
		d.CreatedAt,
	)
	return err
}

func (r *DosesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medication_doses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DosesRepo) GetByID(ctx context.Context, id string) (medications.Dose, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Dose{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, medication_id, time_of_day, amount, route_override, instructions, created_at
		FROM medication_doses
		WHERE id = $1
	`, id)

	var d medications.Dose
	if err := row.Scan(
		&d.ID,
		&d.MedicationID,
		&d.TimeOfDay,
		&d.Amount,
		&d.RouteOverride,
		&d.Instructions,
		&d.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medications.Dose{}, ErrNotFound
		}
		return medications.Dose{}, err
	}
	return d, nil
}

func (r *DosesRepo) ListByMedication(ctx context.Context, medicationID string) ([]medications.Dose, error) {
	return r.list(ctx, []string{strings.TrimSpace(medicationID)})
}

func (r *DosesRepo) ListByMedications(ctx context.Context, medicationIDs []string) ([]medications.Dose, error) {
	return r.list(ctx, medicationIDs)
}

func (r *DosesRepo) list(ctx context.Context, medicationIDs []string) ([]medications.Dose, error) {
	if len(medicationIDs) == 0 {
		return []medications.Dose{}, nil
	}

	// pgx soporta arrays de Postgres vía ANY($1)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, medication_id, time_of_day, amount, route_override, instructions, created_at
		FROM medication_doses
		WHERE medication_id = ANY($1)
		ORDER BY time_of_day ASC, created_at ASC
	`, pgTextArray(medicationIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Dose, 0)
	for rows.Next() {
		var d medications.Dose
		if err := rows.Scan(
			&d.ID,
			&d.MedicationID,
			&d.TimeOfDay,
			&d.Amount,
			&d.RouteOverride,
			&d.Instructions,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// pgTextArray arma el literal text[] ({"a","b"}) para ANY($1).
func pgTextArray(items []string) string {
	escaped := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.ReplaceAll(it, `\`, `\\`)
		it = strings.ReplaceAll(it, `"`, `\"`)
		escaped = append(escaped, `"`+it+`"`)
	}
	return "{" + strings.Join(escaped, ",") + "}"
}
