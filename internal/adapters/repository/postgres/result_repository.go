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

type resultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) ports.ResultRepository {
	return &resultRepository{
		db: db,
	}
}

// Save keeps the first result written for a proposal; later calls are no-ops.
func (r *resultRepository) Save(ctx context.Context, result *domain.ProposalResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryResult := `
		INSERT INTO proposal_results (proposal_id, total_votes, total_weight, winner_option_id, finalized_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (proposal_id) DO NOTHING
	`
	var winner any
	if result.Tally.WinnerOptionID != nil {
		winner = *result.Tally.WinnerOptionID
	}
	res, err := tx.ExecContext(ctx, queryResult,
		result.ProposalID, result.Tally.TotalVotes, result.Tally.TotalWeight, winner, result.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	} else if affected == 0 {
		return nil
	}

	queryOption := `
		INSERT INTO proposal_result_options (proposal_id, option_id, position, votes, weight, percentage)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare result option statement: %w", err)
	}
	defer stmt.Close()

	for i, opt := range result.Tally.PerOption {
		_, err = stmt.ExecContext(ctx, result.ProposalID, opt.OptionID, i, opt.Votes, opt.Weight, opt.Percentage)
		if err != nil {
			return fmt.Errorf("failed to insert result option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *resultRepository) GetByProposal(ctx context.Context, proposalID uuid.UUID) (*domain.ProposalResult, error) {
	query := `
		SELECT proposal_id, total_votes, total_weight, winner_option_id, finalized_at
		FROM proposal_results
		WHERE proposal_id = $1
	`
	var (
		result domain.ProposalResult
		winner uuid.NullUUID
	)
	err := r.db.QueryRowContext(ctx, query, proposalID).Scan(
		&result.ProposalID, &result.Tally.TotalVotes, &result.Tally.TotalWeight, &winner, &result.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if winner.Valid {
		result.Tally.WinnerOptionID = &winner.UUID
	}

	queryOptions := `
		SELECT option_id, votes, weight, percentage
		FROM proposal_result_options
		WHERE proposal_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get result options: %w", err)
	}
	defer rows.Close()

	result.Tally.PerOption = []domain.OptionTally{}
	for rows.Next() {
		var opt domain.OptionTally
		if err := rows.Scan(&opt.OptionID, &opt.Votes, &opt.Weight, &opt.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan result option: %w", err)
		}
		result.Tally.PerOption = append(result.Tally.PerOption, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result options: %w", err)
	}
	return &result, nil
}
