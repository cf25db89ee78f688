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
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTransactionMetadataMergesKeys(t *testing.T) {
	engine, mock := newTestEngine(t)

	txnRows := sqlmock.NewRows([]string{"transaction_id", "code", "description", "status", "reverses_id", "reversed_by_id", "hash", "created_at", "posted_at", "meta_data"}).
		AddRow("txn_1", "TXN20260829ABCDEF01", "Member deposit", "POSTED", "", "", "", time.Now(), time.Now(), []byte(`{"branch":"ikeja"}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WithArgs("txn_1").
		WillReturnRows(txnRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM entries")).
		WithArgs("txn_1").
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "account_id", "side", "amount", "description", "created_at"}))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET meta_data")).
		WithArgs("txn_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	merged, err := engine.UpdateMetadata(context.Background(), "txn_1", map[string]interface{}{"teller": "ada"})
	require.NoError(t, err)

	assert.Equal(t, "ikeja", merged["branch"])
	assert.Equal(t, "ada", merged["teller"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccountMetadata(t *testing.T) {
	engine, mock := newTestEngine(t)

	account := cashAccount()
	expectAccountFetch(mock, account)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET meta_data")).
		WithArgs("acc_cash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	merged, err := engine.UpdateMetadata(context.Background(), "acc_cash", map[string]interface{}{"gl_owner": "treasury"})
	require.NoError(t, err)
	assert.Equal(t, "treasury", merged["gl_owner"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMetadataUnknownPrefix(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.UpdateMetadata(context.Background(), "wld_123", map[string]interface{}{"k": "v"})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, apierror.CodeOf(err))
}

func TestUpdateMetadataEntityNotFound(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM members")).
		WithArgs("mem_missing").
		WillReturnRows(sqlmock.NewRows([]string{"member_id"}))

	_, err := engine.UpdateMetadata(context.Background(), "mem_missing", map[string]interface{}{"k": "v"})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}
