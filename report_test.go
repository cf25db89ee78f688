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
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coopledger/coopledger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectChartListing(mock sqlmock.Sqlmock) {
	cash := cashAccount()
	cash.DebitTotal = model.Int64ToBigInt(30000)
	cash.CreditTotal = model.Int64ToBigInt(5000)
	cash.Balance = model.Int64ToBigInt(25000)
	savings := savingsLiability()
	savings.DebitTotal = model.Int64ToBigInt(5000)
	savings.CreditTotal = model.Int64ToBigInt(30000)
	savings.Balance = model.Int64ToBigInt(25000)

	// Active accounts, then archived ones.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id, code, name, category")).
		WithArgs(false, reportPageSize, 0).
		WillReturnRows(accountRows(cash, savings))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id, code, name, category")).
		WithArgs(true, reportPageSize, 0).
		WillReturnRows(accountRows())
}

func TestTrialBalance(t *testing.T) {
	engine, mock := newTestEngine(t)
	expectChartListing(mock)

	report, err := engine.TrialBalance(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	// A consistent ledger's grand totals agree.
	assert.Zero(t, report.TotalDebits.Cmp(report.TotalCredits))
	assert.Equal(t, int64(35000), report.TotalDebits.Int64())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportTrialBalanceCSV(t *testing.T) {
	engine, mock := newTestEngine(t)
	expectChartListing(mock)

	var buf bytes.Buffer
	err := engine.ExportTrialBalanceCSV(context.Background(), &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "code,name,category,debit_total,credit_total,balance", lines[0])
	assert.Contains(t, lines[1], "1000,Cash,asset,300.00,50.00,250.00")
	assert.Contains(t, lines[3], "TOTAL")
	assert.Contains(t, lines[3], "350.00,350.00")
}

func TestAccountStatementRunningBalance(t *testing.T) {
	engine, mock := newTestEngine(t)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	cash := cashAccount()
	cash.DebitTotal = model.Int64ToBigInt(40000)
	cash.CreditTotal = model.Int64ToBigInt(5000)
	cash.Balance = model.Int64ToBigInt(35000)
	expectAccountFetch(mock, cash)

	// Everything posted before the period: 100.00 on the debit side.
	mock.ExpectQuery(regexp.QuoteMeta("FROM entries e")).
		WillReturnRows(sqlmock.NewRows([]string{"debits", "credits"}).AddRow("10000", "0"))

	entryRows := sqlmock.NewRows([]string{"entry_id", "transaction_id", "account_id", "side", "amount", "description", "posted_at"}).
		AddRow("ent_1", "txn_1", "acc_cash", "debit", int64(30000), "Deposit", from.Add(24*time.Hour)).
		AddRow("ent_2", "txn_2", "acc_cash", "credit", int64(5000), "Withdrawal", from.Add(48*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM entries e")).
		WillReturnRows(entryRows)

	statement, err := engine.AccountStatement(context.Background(), "acc_cash", from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), statement.OpeningBalance.Int64())
	require.Len(t, statement.Lines, 2)
	assert.Equal(t, int64(40000), statement.Lines[0].RunningBalance.Int64())
	assert.Equal(t, int64(35000), statement.Lines[1].RunningBalance.Int64())
	assert.Equal(t, int64(35000), statement.ClosingBalance.Int64())
	// The closing balance agrees with the account's incremental balance.
	assert.Zero(t, statement.ClosingBalance.Cmp(cash.Balance))
}

func TestExportTransactionsCSV(t *testing.T) {
	engine, mock := newTestEngine(t)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"transaction_id", "code", "description", "status", "reverses_id", "reversed_by_id", "hash", "created_at", "posted_at"}).
		AddRow("txn_1", "TXN20260829ABCDEF01", "Member deposit", model.StatusPosted, "", "", "", now, now).
		AddRow("txn_2", "TXN20260829ABCDEF02", "Draft entry", model.StatusDraft, "", "", "", now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions t")).
		WillReturnRows(rows)

	var buf bytes.Buffer
	err := engine.ExportTransactionsCSV(context.Background(), &buf, model.TransactionFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "code,description,status,created_at,posted_at", lines[0])
	assert.Contains(t, lines[1], "TXN20260829ABCDEF01,Member deposit,POSTED")
	// Drafts have no posted_at.
	assert.True(t, strings.HasSuffix(lines[2], ","))
}
