package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

// NewVoteRepository relies on the UNIQUE (proposal_id, voter_id) constraint
// to turn away a second vote.
func NewVoteRepository(db *sql.DB) ports.VoteStore {
	return &voteRepository{
		db: db,
	}
}

// Append holds a share lock on the proposal row while inserting, so a
// concurrent status change waits for the vote to commit and a vote arriving
// after it sees the new status.
func (r *voteRepository) Append(ctx context.Context, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status domain.ProposalStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM proposals WHERE id = $1 FOR SHARE`, vote.ProposalID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProposalNotFound
		}
		return fmt.Errorf("failed to lock proposal: %w", err)
	}
	if status != domain.ProposalActive {
		return domain.ErrVotingClosed
	}

	query := `
		INSERT INTO votes (id, proposal_id, option_id, voter_id, weight, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query, vote.ID, vote.ProposalID, vote.OptionID, vote.VoterID, vote.Weight, vote.CastAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

func (r *voteRepository) AllFor(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	query := `
		SELECT id, proposal_id, option_id, voter_id, weight, cast_at
		FROM votes
		WHERE proposal_id = $1
		ORDER BY cast_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.ProposalID, &v.OptionID, &v.VoterID, &v.Weight, &v.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) FindByVoter(ctx context.Context, proposalID uuid.UUID, voterID string) (*domain.Vote, error) {
	query := `
		SELECT id, proposal_id, option_id, voter_id, weight, cast_at
		FROM votes
		WHERE proposal_id = $1 AND voter_id = $2
	`
	var v domain.Vote
	err := r.db.QueryRowContext(ctx, query, proposalID, voterID).Scan(
		&v.ID, &v.ProposalID, &v.OptionID, &v.VoterID, &v.Weight, &v.CastAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return &v, nil
}
