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

const campaignColumns = `
	id, title, description, category, creator,
	goal, raised, withdrawn, deadline, status, created_at
`

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) ports.CampaignRepository {
	return &campaignRepository{
		db: db,
	}
}

func (r *campaignRepository) Save(ctx context.Context, c *domain.Campaign) error {
	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Description, c.Category, c.Creator,
		c.Goal, c.Raised, c.Withdrawn, c.Deadline, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

func (r *campaignRepository) List(ctx context.Context, limit, offset int, category domain.CampaignCategory) ([]*domain.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE ($3 = '' OR category = $3)
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *campaignRepository) RecordDonation(ctx context.Context, d *domain.Donation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE campaigns SET raised = raised + $2 WHERE id = $1`, d.CampaignID, d.Amount)
	if err != nil {
		return fmt.Errorf("failed to raise campaign total: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to raise campaign total: %w", err)
	} else if affected == 0 {
		return domain.ErrCampaignNotFound
	}

	query := `
		INSERT INTO donations (id, campaign_id, donor, amount, tx_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query, d.ID, d.CampaignID, d.Donor, d.Amount, d.TxHash, d.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *campaignRepository) RecordWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE campaigns SET withdrawn = withdrawn + $2
		WHERE id = $1 AND raised - withdrawn >= $2
	`
	res, err := tx.ExecContext(ctx, query, w.CampaignID, w.Amount)
	if err != nil {
		return fmt.Errorf("failed to withdraw from campaign: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to withdraw from campaign: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, w.CampaignID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check campaign: %w", err)
		}
		if !exists {
			return domain.ErrCampaignNotFound
		}
		return domain.ErrInsufficientFunds
	}

	queryInsert := `
		INSERT INTO withdrawals (id, campaign_id, recipient, amount, tx_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, queryInsert, w.ID, w.CampaignID, w.Recipient, w.Amount, w.TxHash, w.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *campaignRepository) ListDonations(ctx context.Context, campaignID uuid.UUID) ([]domain.Donation, error) {
	query := `
		SELECT id, campaign_id, donor, amount, tx_hash, created_at
		FROM donations
		WHERE campaign_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	donations := []domain.Donation{}
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.Donor, &d.Amount, &d.TxHash, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}
	return donations, nil
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &c.Creator,
		&c.Goal, &c.Raised, &c.Withdrawn, &c.Deadline, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
