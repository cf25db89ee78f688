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

package database

import (
	"context"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftTransaction(at time.Time) *model.Transaction {
	return &model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Code:          model.GenerateTransactionCode(at),
		Description:   "Monthly savings deposit",
		Status:        model.StatusDraft,
		CreatedAt:     at,
		Entries: []model.Entry{
			{EntryID: model.GenerateUUIDWithSuffix("ent"), AccountID: "acc_cash", Side: model.Debit, Amount: 10000, CreatedAt: at},
			{EntryID: model.GenerateUUIDWithSuffix("ent"), AccountID: "acc_savings", Side: model.Credit, Amount: 10000, CreatedAt: at},
		},
	}
}

func TestRecordTransaction(t *testing.T) {
	ds, mock := newTestDatasource(t)
	txn := draftTransaction(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(txn.TransactionID, txn.Code, txn.Description, model.StatusDraft, "", txn.Hash, txn.CreatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	for _, entry := range txn.Entries {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries")).
			WithArgs(entry.EntryID, txn.TransactionID, entry.AccountID, entry.Side, entry.Amount, entry.Description, entry.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	got, err := ds.RecordTransaction(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTransactionRollsBackOnEntryFailure(t *testing.T) {
	ds, mock := newTestDatasource(t)
	txn := draftTransaction(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := ds.RecordTransaction(context.Background(), txn)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInternalServer, apierror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionWithEntries(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()

	txnRows := sqlmock.NewRows([]string{"transaction_id", "code", "description", "status", "reverses_id", "reversed_by_id", "hash", "created_at", "posted_at", "meta_data"}).
		AddRow("txn_1", "TXN20260829ABCDEF01", "Monthly savings deposit", model.StatusPosted, "", "", "deadbeef", now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WithArgs("TXN20260829ABCDEF01").
		WillReturnRows(txnRows)

	entryRows := sqlmock.NewRows([]string{"entry_id", "account_id", "side", "amount", "description", "created_at"}).
		AddRow("ent_1", "acc_cash", "debit", int64(10000), "", now).
		AddRow("ent_2", "acc_savings", "credit", int64(10000), "", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM entries")).
		WithArgs("txn_1").
		WillReturnRows(entryRows)

	txn, err := ds.GetTransaction(context.Background(), "TXN20260829ABCDEF01")
	require.NoError(t, err)
	assert.Equal(t, "txn_1", txn.TransactionID)
	require.Len(t, txn.Entries, 2)
	assert.True(t, txn.Balanced())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()
	txn := draftTransaction(now)
	txn.PostedAt = now

	cash := &model.Account{AccountID: "acc_cash", Category: model.CategoryAsset}
	cash.InitializeBalanceFields()
	cash.DebitTotal = big.NewInt(10000)
	cash.Balance = big.NewInt(10000)
	savings := &model.Account{AccountID: "acc_savings", Category: model.CategoryLiability}
	savings.InitializeBalanceFields()
	savings.CreditTotal = big.NewInt(10000)
	savings.Balance = big.NewInt(10000)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status")).
		WithArgs(txn.TransactionID, model.StatusPosted, txn.PostedAt, txn.Hash, model.StatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET debit_total")).
		WithArgs("acc_cash", "10000", "0", "10000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET debit_total")).
		WithArgs("acc_savings", "0", "10000", "10000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ds.ApplyTransaction(context.Background(), txn, []*model.Account{cash, savings})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransactionAlreadyPosted(t *testing.T) {
	ds, mock := newTestDatasource(t)
	txn := draftTransaction(time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := ds.ApplyTransaction(context.Background(), txn, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrAlreadyPosted, apierror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransactionReversalMarksOriginal(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()
	txn := draftTransaction(now)
	txn.ReversesID = "txn_original"
	txn.PostedAt = now

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status")).
		WithArgs("txn_original", model.StatusReversed, txn.TransactionID, model.StatusPosted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ds.ApplyTransaction(context.Background(), txn, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransactionReversalAlreadyReversed(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()
	txn := draftTransaction(now)
	txn.ReversesID = "txn_original"
	txn.PostedAt = now

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := ds.ApplyTransaction(context.Background(), txn, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrAlreadyReversed, apierror.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumEntriesAsOf(t *testing.T) {
	ds, mock := newTestDatasource(t)
	asOf := time.Now()

	rows := sqlmock.NewRows([]string{"debits", "credits"}).AddRow("25000", "10000")
	mock.ExpectQuery(regexp.QuoteMeta("FROM entries e")).
		WithArgs("acc_cash", asOf).
		WillReturnRows(rows)

	debits, credits, err := ds.SumEntriesAsOf(context.Background(), "acc_cash", asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), debits.Int64())
	assert.Equal(t, int64(10000), credits.Int64())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllTransactionsByAccount(t *testing.T) {
	ds, mock := newTestDatasource(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"transaction_id", "code", "description", "status", "reverses_id", "reversed_by_id", "hash", "created_at", "posted_at"}).
		AddRow("txn_1", "TXN20260829ABCDEF01", "", model.StatusPosted, "", "", "", now, now).
		AddRow("txn_2", "TXN20260829ABCDEF02", "", model.StatusDraft, "", "", "", now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions t")).
		WithArgs("acc_cash", 50, 0).
		WillReturnRows(rows)

	transactions, err := ds.GetAllTransactions(context.Background(), model.TransactionFilter{AccountID: "acc_cash"}, 50, 0)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, model.StatusPosted, transactions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
