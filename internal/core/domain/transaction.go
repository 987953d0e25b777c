package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TxDonation   TransactionKind = "donation"
	TxWithdrawal TransactionKind = "withdrawal"
)

type Transaction struct {
	Kind   TransactionKind
	From   string
	To     string
	Amount decimal.Decimal
}

type TransactionReceipt struct {
	Hash        string    `json:"hash"`
	BlockNumber uint64    `json:"block_number"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
