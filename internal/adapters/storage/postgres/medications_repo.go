package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"med-scheduler/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationColumns = `
	id, owner_user_id,
	name, strength, route, instructions,
	active_from, active_until, tablets_remaining,
	created_at, updated_at
`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, owner_user_id,
			name, strength, route, instructions,
			active_from, active_until, tablets_remaining,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		m.ID,
		m.OwnerUserID,
		m.Name,
		m.Strength,
		m.Route,
		m.Instructions,
		m.ActiveFrom,
		toNullTime(m.ActiveUntil),
		m.TabletsRemaining,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			strength = $3,
			route = $4,
			instructions = $5,
			active_from = $6,
			active_until = $7,
			tablets_remaining = $8,
			updated_at = $9
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Strength,
		m.Route,
		m.Instructions,
		m.ActiveFrom,
		toNullTime(m.ActiveUntil),
		m.TabletsRemaining,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]medications.Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMedications(rows)
}

func (r *MedicationsRepo) ListActiveOn(ctx context.Context, ownerUserID string, date time.Time) ([]medications.Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	// Ventana inclusiva; active_until NULL = sin tope superior.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicationColumns+`
		FROM medications
		WHERE owner_user_id = $1
		  AND active_from <= $2
		  AND (active_until IS NULL OR active_until >= $2)
		ORDER BY created_at ASC
	`, ownerUserID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMedications(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	var until sql.NullTime
	if err := row.Scan(
		&m.ID,
		&m.OwnerUserID,
		&m.Name,
		&m.Strength,
		&m.Route,
		&m.Instructions,
		&m.ActiveFrom,
		&until,
		&m.TabletsRemaining,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	if until.Valid {
		t := until.Time
		m.ActiveUntil = &t
	}
	return m, nil
}

func collectMedications(rows *sql.Rows) ([]medications.Medication, error) {
	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
