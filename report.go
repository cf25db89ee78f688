/*
Copyright 2025 Coopledger Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package coopledger

import (
	"context"
	"encoding/csv"
	"io"
	"math/big"
	"time"

	"github.com/coopledger/coopledger/model"
	"github.com/shopspring/decimal"
)

const reportPageSize = 1000

type TrialBalanceRow struct {
	Code        string                `json:"code"`
	Name        string                `json:"name"`
	Category    model.AccountCategory `json:"category"`
	DebitTotal  *big.Int              `json:"debit_total"`
	CreditTotal *big.Int              `json:"credit_total"`
	Balance     *big.Int              `json:"balance"`
}

type TrialBalance struct {
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  *big.Int          `json:"total_debits"`
	TotalCredits *big.Int          `json:"total_credits"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

type StatementLine struct {
	EntryID        string     `json:"entry_id"`
	TransactionID  string     `json:"transaction_id"`
	Side           model.Side `json:"side"`
	Amount         int64      `json:"amount"`
	Description    string     `json:"description,omitempty"`
	PostedAt       time.Time  `json:"posted_at"`
	RunningBalance *big.Int   `json:"running_balance"`
}

type AccountStatement struct {
	Account        *model.Account  `json:"account"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance *big.Int        `json:"opening_balance"`
	ClosingBalance *big.Int        `json:"closing_balance"`
	Lines          []StatementLine `json:"lines"`
}

// TrialBalance reports every account's side totals and balance. The grand
// debit and credit totals are equal on a consistent ledger; a difference
// means corruption.
func (l *Coopledger) TrialBalance(ctx context.Context) (*TrialBalance, error) {
	report := &TrialBalance{
		TotalDebits:  big.NewInt(0),
		TotalCredits: big.NewInt(0),
		GeneratedAt:  time.Now(),
	}

	// Archived accounts keep their totals and still count toward the
	// grand totals.
	for _, archived := range []bool{false, true} {
		for offset := 0; ; offset += reportPageSize {
			accounts, err := l.datasource.GetAllAccounts(model.AccountFilter{Archived: archived}, reportPageSize, offset)
			if err != nil {
				return nil, err
			}
			for _, account := range accounts {
				report.Rows = append(report.Rows, TrialBalanceRow{
					Code:        account.Code,
					Name:        account.Name,
					Category:    account.Category,
					DebitTotal:  account.DebitTotal,
					CreditTotal: account.CreditTotal,
					Balance:     account.Balance,
				})
				report.TotalDebits.Add(report.TotalDebits, account.DebitTotal)
				report.TotalCredits.Add(report.TotalCredits, account.CreditTotal)
			}
			if len(accounts) < reportPageSize {
				break
			}
		}
	}

	return report, nil
}

// AccountStatement lists an account's posted entries over a period with a
// running balance oriented to the account's normal side. The opening balance
// replays everything posted before the period. Postgres timestamps carry
// microsecond resolution, so the instant just before from is one microsecond
// earlier.
func (l *Coopledger) AccountStatement(ctx context.Context, accountID string, from, to time.Time) (*AccountStatement, error) {
	account, err := l.datasource.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	debits, credits, err := l.datasource.SumEntriesAsOf(ctx, accountID, from.Add(-time.Microsecond))
	if err != nil {
		return nil, err
	}
	opening := account.Category.BalanceFromTotals(debits, credits)

	entries, err := l.datasource.GetEntriesForAccount(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}

	statement := &AccountStatement{
		Account:        account,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		ClosingBalance: new(big.Int).Set(opening),
	}
	normalSide := account.Category.NormalSide()
	running := new(big.Int).Set(opening)
	for _, entry := range entries {
		amount := model.Int64ToBigInt(entry.Amount)
		if entry.Side == normalSide {
			running.Add(running, amount)
		} else {
			running.Sub(running, amount)
		}
		statement.Lines = append(statement.Lines, StatementLine{
			EntryID:        entry.EntryID,
			TransactionID:  entry.TransactionID,
			Side:           entry.Side,
			Amount:         entry.Amount,
			Description:    entry.Description,
			PostedAt:       entry.CreatedAt,
			RunningBalance: new(big.Int).Set(running),
		})
	}
	statement.ClosingBalance = running

	return statement, nil
}

// minorUnitsToDecimal renders minor units as a two-place decimal string for
// export files.
func minorUnitsToDecimal(value *big.Int) string {
	return decimal.NewFromBigInt(value, -2).StringFixed(2)
}

// ExportTrialBalanceCSV writes the trial balance as CSV with amounts in
// major units.
func (l *Coopledger) ExportTrialBalanceCSV(ctx context.Context, w io.Writer) error {
	report, err := l.TrialBalance(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"code", "name", "category", "debit_total", "credit_total", "balance"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{
			row.Code,
			row.Name,
			string(row.Category),
			minorUnitsToDecimal(row.DebitTotal),
			minorUnitsToDecimal(row.CreditTotal),
			minorUnitsToDecimal(row.Balance),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"", "TOTAL", "", minorUnitsToDecimal(report.TotalDebits), minorUnitsToDecimal(report.TotalCredits), ""}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// ExportStatementCSV writes an account statement as CSV.
func (l *Coopledger) ExportStatementCSV(ctx context.Context, w io.Writer, accountID string, from, to time.Time) error {
	statement, err := l.AccountStatement(ctx, accountID, from, to)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"posted_at", "transaction_id", "description", "side", "amount", "running_balance"}); err != nil {
		return err
	}
	for _, line := range statement.Lines {
		record := []string{
			line.PostedAt.Format(time.RFC3339),
			line.TransactionID,
			line.Description,
			string(line.Side),
			minorUnitsToDecimal(model.Int64ToBigInt(line.Amount)),
			minorUnitsToDecimal(line.RunningBalance),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportTransactionsCSV writes transactions matching the filter as CSV,
// newest first.
func (l *Coopledger) ExportTransactionsCSV(ctx context.Context, w io.Writer, filter model.TransactionFilter) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"code", "description", "status", "created_at", "posted_at"}); err != nil {
		return err
	}

	for offset := 0; ; offset += reportPageSize {
		transactions, err := l.datasource.GetAllTransactions(ctx, filter, reportPageSize, offset)
		if err != nil {
			return err
		}
		for _, txn := range transactions {
			postedAt := ""
			if !txn.PostedAt.IsZero() {
				postedAt = txn.PostedAt.Format(time.RFC3339)
			}
			record := []string{txn.Code, txn.Description, txn.Status, txn.CreatedAt.Format(time.RFC3339), postedAt}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		if len(transactions) < reportPageSize {
			break
		}
	}

	writer.Flush()
	return writer.Error()
}
