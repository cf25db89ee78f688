package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// Side is the side of a double-entry booking.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

func (s Side) Valid() bool {
	return s == Debit || s == Credit
}

// Flip returns the opposite side.
func (s Side) Flip() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

const (
	StatusDraft    = "DRAFT"
	StatusPosted   = "POSTED"
	StatusReversed = "REVERSED"
)

// Entry is a single line within a transaction. Amounts are carried in minor
// units (e.g. kobo, cents); entries never exist outside their transaction.
type Entry struct {
	ID            int64     `json:"-"`
	EntryID       string    `json:"entry_id"`
	TransactionID string    `json:"-"`
	AccountID     string    `json:"account_id"`
	Side          Side      `json:"side"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Transaction struct {
	ID            int64                  `json:"-"`
	TransactionID string                 `json:"transaction_id"`
	Code          string                 `json:"code"`
	Description   string                 `json:"description"`
	Status        string                 `json:"status"`
	Entries       []Entry                `json:"entries"`
	ReversesID    string                 `json:"reverses_id,omitempty"`
	ReversedByID  string                 `json:"reversed_by_id,omitempty"`
	Hash          string                 `json:"hash"`
	CreatedAt     time.Time              `json:"created_at"`
	PostedAt      time.Time              `json:"posted_at,omitempty"`
	MetaData      map[string]interface{} `json:"meta_data,omitempty"`
}

type TransactionFilter struct {
	Status    string    `json:"status"`
	AccountID string    `json:"account_id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// HashTxn generates a SHA-256 hash over the transaction's entries. It pins
// the entry set at posting time so later tampering is detectable.
func (transaction *Transaction) HashTxn() string {
	data := transaction.Description
	for _, entry := range transaction.Entries {
		data += fmt.Sprintf("%s%s%d", entry.AccountID, entry.Side, entry.Amount)
	}
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// SumSides returns the debit and credit totals across the transaction's
// entries. Summation is order-independent; entry order is preserved only for
// display.
func (transaction *Transaction) SumSides() (debits, credits *big.Int) {
	debits, credits = big.NewInt(0), big.NewInt(0)
	for _, entry := range transaction.Entries {
		amount := Int64ToBigInt(entry.Amount)
		if entry.Side == Debit {
			debits.Add(debits, amount)
		} else {
			credits.Add(credits, amount)
		}
	}
	return debits, credits
}

// Balanced reports whether the transaction satisfies the balance law:
// sum(debits) == sum(credits), exactly, in minor units.
func (transaction *Transaction) Balanced() bool {
	debits, credits := transaction.SumSides()
	return compare(debits, "==", credits)
}

// Imbalance returns debits minus credits in minor units.
func (transaction *Transaction) Imbalance() *big.Int {
	debits, credits := transaction.SumSides()
	return new(big.Int).Sub(debits, credits)
}

// BuildReversal synthesizes the compensating transaction: same entry set with
// every side flipped, referencing this transaction as the one it reverses.
func (transaction *Transaction) BuildReversal() *Transaction {
	now := time.Now()
	reversal := &Transaction{
		TransactionID: GenerateUUIDWithSuffix("txn"),
		Code:          GenerateTransactionCode(now),
		Description:   fmt.Sprintf("Reversal of %s", transaction.Code),
		Status:        StatusDraft,
		ReversesID:    transaction.TransactionID,
		CreatedAt:     now,
		MetaData:      map[string]interface{}{"reverses": transaction.Code},
	}
	for _, entry := range transaction.Entries {
		reversal.Entries = append(reversal.Entries, Entry{
			EntryID:       GenerateUUIDWithSuffix("ent"),
			TransactionID: reversal.TransactionID,
			AccountID:     entry.AccountID,
			Side:          entry.Side.Flip(),
			Amount:        entry.Amount,
			Description:   entry.Description,
			CreatedAt:     now,
		})
	}
	reversal.Hash = reversal.HashTxn()
	return reversal
}
