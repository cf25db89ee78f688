package model

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SavingsActive  = "active"
	SavingsDormant = "dormant"
	SavingsClosed  = "closed"
)

// SavingsAccount tracks a member's savings position. The balance here mirrors
// the member's share of the Member Savings liability account; the ledger
// remains the source of truth.
type SavingsAccount struct {
	ID             int64                  `json:"-"`
	SavingsID      string                 `json:"savings_id"`
	Number         string                 `json:"number"`
	MemberID       string                 `json:"member_id"`
	Balance        *big.Int               `json:"balance"`
	Status         string                 `json:"status"`
	MinimumBalance int64                  `json:"minimum_balance"`
	InterestRate   float64                `json:"interest_rate"`
	CreatedAt      time.Time              `json:"created_at"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

// GenerateSavingsNumber builds the account number printed on passbooks,
// in the form SAV<YYYYMMDD><8-hex-upper>.
func GenerateSavingsNumber(at time.Time) string {
	id := uuid.New().String()
	return fmt.Sprintf("SAV%s%s", at.Format("20060102"), strings.ToUpper(id[:8]))
}

func (s *SavingsAccount) InitializeBalance() {
	if s.Balance == nil {
		s.Balance = big.NewInt(0)
	}
}

// CanWithdraw reports whether the account can release the given amount
// without dropping below its minimum balance.
func (s *SavingsAccount) CanWithdraw(amount int64) bool {
	s.InitializeBalance()
	remaining := new(big.Int).Sub(s.Balance, Int64ToBigInt(amount))
	return remaining.Cmp(Int64ToBigInt(s.MinimumBalance)) >= 0
}
