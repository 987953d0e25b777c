package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type voterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterRepository {
	return &voterRepository{
		db: db,
	}
}

func (r *voterRepository) Upsert(ctx context.Context, voter *domain.Voter) error {
	query := `
		INSERT INTO voters (id, age, is_resident, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET age = EXCLUDED.age,
		    is_resident = EXCLUDED.is_resident,
		    role = EXCLUDED.role,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, voter.ID, voter.Age, voter.IsResident, voter.Role, voter.CreatedAt, voter.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert voter: %w", err)
	}
	return nil
}

func (r *voterRepository) GetByID(ctx context.Context, id string) (*domain.Voter, error) {
	query := `
		SELECT id, age, is_resident, is_verified, role, created_at, updated_at
		FROM voters
		WHERE id = $1
	`
	var v domain.Voter
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Age, &v.IsResident, &v.IsVerified, &v.Role, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, fmt.Errorf("failed to get voter: %w", err)
	}
	return &v, nil
}

func (r *voterRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE voters SET is_verified = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, verified)
	if err != nil {
		return fmt.Errorf("failed to verify voter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify voter: %w", err)
	}
	if affected == 0 {
		return domain.ErrVoterNotFound
	}
	return nil
}
