package ports

import (
	"context"

	"github.com/vncsmyrnk/crowdvote/internal/core/domain"
)

// TransactionSubmitter hands value transfers to a chain. Nothing in the
// voting core depends on it.
type TransactionSubmitter interface {
	Submit(ctx context.Context, tx domain.Transaction) (domain.TransactionReceipt, error)
}
