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
	"database/sql"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMember(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO members")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	member, err := ds.CreateMember(model.Member{
		FirstName:      gofakeit.FirstName(),
		LastName:       gofakeit.LastName(),
		EmailAddress:   gofakeit.Email(),
		PhoneNumber:    gofakeit.Phone(),
		MonthlySavings: 500000,
	})
	require.NoError(t, err)
	assert.Contains(t, member.MemberID, "mem_")
	assert.Equal(t, model.MemberActive, member.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMemberByIDNotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM members")).
		WithArgs("mem_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := ds.GetMemberByID("mem_missing")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}

func TestUpdateMemberNotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE members")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.UpdateMember(&model.Member{MemberID: "mem_missing"})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}

func TestCreateSavingsAccount(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO savings_accounts")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	account, err := ds.CreateSavingsAccount(model.SavingsAccount{
		Number:   model.GenerateSavingsNumber(time.Now()),
		MemberID: "mem_1",
	})
	require.NoError(t, err)
	assert.Contains(t, account.SavingsID, "sav_")
	assert.Equal(t, model.SavingsActive, account.Status)
	assert.Equal(t, int64(0), account.Balance.Int64())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSavingsAccountByID(t *testing.T) {
	ds, mock := newTestDatasource(t)

	rows := sqlmock.NewRows([]string{"savings_id", "number", "member_id", "balance", "status", "minimum_balance", "interest_rate", "created_at", "meta_data"}).
		AddRow("sav_1", "SAV20260829ABCDEF01", "mem_1", "250000", "active", int64(10000), 2.5, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM savings_accounts")).
		WithArgs("sav_1").
		WillReturnRows(rows)

	account, err := ds.GetSavingsAccountByID("sav_1")
	require.NoError(t, err)
	assert.Equal(t, int64(250000), account.Balance.Int64())
	assert.True(t, account.CanWithdraw(240000))
	assert.False(t, account.CanWithdraw(240001))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSavingsBalance(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE savings_accounts SET balance")).
		WithArgs("sav_1", "-5000").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.UpdateSavingsBalance(context.Background(), "sav_1", big.NewInt(-5000))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawSavingsBalance(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE savings_accounts SET balance = balance - $2::numeric")).
		WithArgs("sav_1", "5000").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.WithdrawSavingsBalance(context.Background(), "sav_1", big.NewInt(5000))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawSavingsBalanceBelowMinimum(t *testing.T) {
	ds, mock := newTestDatasource(t)

	// The minimum-balance predicate matched no row.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE savings_accounts SET balance = balance - $2::numeric")).
		WithArgs("sav_1", "900000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.WithdrawSavingsBalance(context.Background(), "sav_1", big.NewInt(900000))
	require.Error(t, err)
	assert.Equal(t, apierror.ErrBadRequest, apierror.CodeOf(err))
}

func TestCreateLoan(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO loans")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	loan, err := ds.CreateLoan(model.Loan{
		Code:         model.GenerateLoanCode(time.Now()),
		MemberID:     "mem_1",
		Principal:    1000000,
		InterestRate: 5,
		TermMonths:   12,
	})
	require.NoError(t, err)
	assert.Contains(t, loan.LoanID, "lon_")
	assert.Equal(t, model.LoanPending, loan.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLoansByMember(t *testing.T) {
	ds, mock := newTestDatasource(t)

	rows := sqlmock.NewRows([]string{"loan_id", "code", "member_id", "principal", "interest_rate", "term_months", "status", "principal_balance", "disbursed_at", "created_at", "meta_data"}).
		AddRow("lon_1", "LN20260829ABCDEF01", "mem_1", int64(1000000), 5.0, 12, "disbursed", "600000", time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM loans")).
		WithArgs("mem_1").
		WillReturnRows(rows)

	loans, err := ds.GetLoansByMember("mem_1")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, int64(600000), loans[0].Outstanding().Int64())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLoanNotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE loans")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.UpdateLoan(&model.Loan{LoanID: "lon_missing", Status: model.LoanRepaid})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.CodeOf(err))
}
