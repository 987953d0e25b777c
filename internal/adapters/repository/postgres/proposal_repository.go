package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

const proposalColumns = `
	id, title, description, created_by,
	min_age, residency_required, verification_required, allowed_roles,
	starts_at, ends_at, status, created_at
`

type proposalRepository struct {
	db *sql.DB
}

func NewProposalRepository(db *sql.DB) ports.ProposalRepository {
	return &proposalRepository{
		db: db,
	}
}

func (r *proposalRepository) Save(ctx context.Context, proposal *domain.Proposal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryProposal := `
		INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	rule := proposal.Eligibility
	_, err = tx.ExecContext(ctx, queryProposal,
		proposal.ID, proposal.Title, proposal.Description, proposal.CreatedBy,
		rule.MinAge, rule.ResidencyRequired, rule.VerificationRequired, pq.Array(rule.AllowedRoles),
		proposal.Window.Start, proposal.Window.End, proposal.Status, proposal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert proposal: %w", err)
	}

	queryOption := `
		INSERT INTO proposal_options (id, proposal_id, position, title, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for i, opt := range proposal.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, proposal.ID, i, opt.Title, jsonParam(opt.Metadata))
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`

	proposal, err := scanProposal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	options, err := r.fetchOptions(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	proposal.Options = options

	return proposal, nil
}

func (r *proposalRepository) List(ctx context.Context, limit, offset int, status domain.ProposalStatus) ([]*domain.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE ($3 = '' OR status = $3)
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(ctx, rows)
}

func (r *proposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ProposalStatus) error {
	query := `UPDATE proposals SET status = $3 WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM proposals WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check proposal: %w", err)
	}
	if !exists {
		return domain.ErrProposalNotFound
	}
	return domain.ErrInvalidStatusTransition
}

func (r *proposalRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE (status = 'pending' AND starts_at <= $1)
		   OR (status = 'active' AND ends_at <= $1)
		ORDER BY ends_at
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(ctx, rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row rowScanner) (*domain.Proposal, error) {
	var p domain.Proposal
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.CreatedBy,
		&p.Eligibility.MinAge, &p.Eligibility.ResidencyRequired, &p.Eligibility.VerificationRequired,
		pq.Array(&p.Eligibility.AllowedRoles),
		&p.Window.Start, &p.Window.End, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposalRepository) scanProposals(ctx context.Context, rows *sql.Rows) ([]*domain.Proposal, error) {
	var proposals []*domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	rows.Close()

	for _, p := range proposals {
		options, err := r.fetchOptions(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Options = options
	}
	return proposals, nil
}

func (r *proposalRepository) fetchOptions(ctx context.Context, proposalID uuid.UUID) ([]domain.VotingOption, error) {
	query := `
		SELECT id, proposal_id, title, metadata
		FROM proposal_options
		WHERE proposal_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal options: %w", err)
	}
	defer rows.Close()

	var options []domain.VotingOption
	for rows.Next() {
		var (
			opt      domain.VotingOption
			metadata []byte
		)
		if err := rows.Scan(&opt.ID, &opt.ProposalID, &opt.Title, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		opt.Metadata = metadata
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
