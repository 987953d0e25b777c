// Package mock simulates a chain that confirms every transaction after a
// fixed delay.
package mock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

const genesisBlock = 19_000_000

type Submitter struct {
	delay  time.Duration
	block  atomic.Uint64
	logger *slog.Logger
}

var _ ports.TransactionSubmitter = (*Submitter)(nil)

func NewSubmitter(delay time.Duration, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Submitter{delay: delay, logger: logger}
	s.block.Store(genesisBlock)
	return s
}

// Submit waits for the configured delay and returns a receipt with a random
// 32-byte hash. It gives up early if ctx is cancelled.
func (s *Submitter) Submit(ctx context.Context, tx domain.Transaction) (domain.TransactionReceipt, error) {
	if !tx.Amount.IsPositive() {
		return domain.TransactionReceipt{}, domain.ErrInvalidAmount
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.TransactionReceipt{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.TransactionReceipt{}, err
	}

	hash, err := randomHash()
	if err != nil {
		return domain.TransactionReceipt{}, fmt.Errorf("failed to generate tx hash: %w", err)
	}

	receipt := domain.TransactionReceipt{
		Hash:        hash,
		BlockNumber: s.block.Add(1),
		ConfirmedAt: time.Now().UTC(),
	}

	s.logger.Debug("transaction confirmed",
		"event", "tx_confirmed",
		"kind", tx.Kind,
		"from", tx.From,
		"to", tx.To,
		"amount", tx.Amount.String(),
		"hash", receipt.Hash,
		"block", receipt.BlockNumber,
	)
	return receipt, nil
}

func randomHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}
