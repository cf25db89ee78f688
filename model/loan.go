package model

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	LoanPending   = "pending"
	LoanApproved  = "approved"
	LoanDisbursed = "disbursed"
	LoanRepaid    = "repaid"
	LoanRejected  = "rejected"
)

type Loan struct {
	ID               int64                  `json:"-"`
	LoanID           string                 `json:"loan_id"`
	Code             string                 `json:"code"`
	MemberID         string                 `json:"member_id"`
	Principal        int64                  `json:"principal"`
	InterestRate     float64                `json:"interest_rate"`
	TermMonths       int                    `json:"term_months"`
	Status           string                 `json:"status"`
	PrincipalBalance *big.Int               `json:"principal_balance"`
	DisbursedAt      time.Time              `json:"disbursed_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	MetaData         map[string]interface{} `json:"meta_data,omitempty"`
}

// GenerateLoanCode builds the loan reference, in the form LN<YYYYMMDD><8-hex-upper>.
func GenerateLoanCode(at time.Time) string {
	id := uuid.New().String()
	return fmt.Sprintf("LN%s%s", at.Format("20060102"), strings.ToUpper(id[:8]))
}

func (l *Loan) InitializeBalance() {
	if l.PrincipalBalance == nil {
		l.PrincipalBalance = big.NewInt(0)
	}
}

// Outstanding returns the unpaid principal in minor units.
func (l *Loan) Outstanding() *big.Int {
	l.InitializeBalance()
	return new(big.Int).Set(l.PrincipalBalance)
}
