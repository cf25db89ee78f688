package model

import (
	"math/big"
	"time"

	"github.com/coopledger/coopledger/internal/apierror"
)

// AccountCategory is one of the five chart-of-accounts categories.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "asset"
	CategoryLiability AccountCategory = "liability"
	CategoryEquity    AccountCategory = "equity"
	CategoryIncome    AccountCategory = "income"
	CategoryExpense   AccountCategory = "expense"
)

func (c AccountCategory) Valid() bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryIncome, CategoryExpense:
		return true
	}
	return false
}

// NormalSide returns the side on which balances of this category
// conventionally increase. Assets and expenses are debit-normal; liabilities,
// equity and income are credit-normal.
func (c AccountCategory) NormalSide() Side {
	switch c {
	case CategoryAsset, CategoryExpense:
		return Debit
	default:
		return Credit
	}
}

// BalanceFromTotals orients debit and credit totals to the category's normal
// side. Replay-based balance reads use it to fold summed entries into the
// same figure the incremental path maintains.
func (c AccountCategory) BalanceFromTotals(debits, credits *big.Int) *big.Int {
	if c.NormalSide() == Debit {
		return new(big.Int).Sub(debits, credits)
	}
	return new(big.Int).Sub(credits, debits)
}

type Account struct {
	ID          int64                  `json:"-"`
	AccountID   string                 `json:"account_id"`
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	Category    AccountCategory        `json:"category"`
	Description string                 `json:"description,omitempty"`
	DebitTotal  *big.Int               `json:"debit_total"`
	CreditTotal *big.Int               `json:"credit_total"`
	Balance     *big.Int               `json:"balance"`
	Archived    bool                   `json:"archived"`
	CreatedAt   time.Time              `json:"created_at"`
	MetaData    map[string]interface{} `json:"meta_data,omitempty"`
}

type AccountFilter struct {
	Category AccountCategory `json:"category"`
	Archived bool            `json:"archived"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
}

// InitializeBalanceFields initializes all the fields of the Account struct
// that might be nil, so balance arithmetic always has valid *big.Int values.
func (account *Account) InitializeBalanceFields() {
	if account.DebitTotal == nil {
		account.DebitTotal = big.NewInt(0)
	}
	if account.CreditTotal == nil {
		account.CreditTotal = big.NewInt(0)
	}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
}

func (account *Account) addDebit(amount int64) {
	account.InitializeBalanceFields()
	account.DebitTotal.Add(account.DebitTotal, Int64ToBigInt(amount))
}

func (account *Account) addCredit(amount int64) {
	account.InitializeBalanceFields()
	account.CreditTotal.Add(account.CreditTotal, Int64ToBigInt(amount))
}

// computeBalance recomputes the running balance from the side totals,
// oriented to the account's normal side.
func (account *Account) computeBalance() {
	account.InitializeBalanceFields()
	if account.Category.NormalSide() == Debit {
		account.Balance.Sub(account.DebitTotal, account.CreditTotal)
		return
	}
	account.Balance.Sub(account.CreditTotal, account.DebitTotal)
}

// ApplyEntry applies a single entry's delta to the account's side totals and
// running balance. The entry must reference this account.
func (account *Account) ApplyEntry(entry *Entry) error {
	if entry.AccountID != account.AccountID {
		return apierror.NewAPIError(apierror.ErrUnknownAccount, "entry does not reference this account", entry.AccountID)
	}
	switch entry.Side {
	case Debit:
		account.addDebit(entry.Amount)
	case Credit:
		account.addCredit(entry.Amount)
	default:
		return apierror.NewAPIError(apierror.ErrInvalidInput, "entry side must be debit or credit", entry.Side)
	}
	account.computeBalance()
	return nil
}
