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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/lib/pq"
)

const savingsSelectColumns = `savings_id, number, member_id, balance, status, minimum_balance, interest_rate, created_at, meta_data`

func scanSavingsRow(row interface {
	Scan(dest ...interface{}) error
}) (*model.SavingsAccount, error) {
	account := model.SavingsAccount{}
	var balanceStr string
	var metaDataJSON []byte
	err := row.Scan(&account.SavingsID, &account.Number, &account.MemberID, &balanceStr, &account.Status,
		&account.MinimumBalance, &account.InterestRate, &account.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}
	account.Balance, err = scanBigInt(balanceStr)
	if err != nil {
		return nil, err
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &account.MetaData); err != nil {
			return nil, err
		}
	}
	return &account, nil
}

func (d Datasource) CreateSavingsAccount(account model.SavingsAccount) (model.SavingsAccount, error) {
	metaDataJSON, err := json.Marshal(account.MetaData)
	if err != nil {
		return model.SavingsAccount{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	account.SavingsID = model.GenerateUUIDWithSuffix("sav")
	account.InitializeBalance()
	if account.Status == "" {
		account.Status = model.SavingsActive
	}

	_, err = d.Conn.Exec(`
		INSERT INTO savings_accounts (savings_id, number, member_id, balance, status, minimum_balance, interest_rate, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
	`, account.SavingsID, account.Number, account.MemberID, account.Balance.String(), account.Status,
		account.MinimumBalance, account.InterestRate, metaDataJSON)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return model.SavingsAccount{}, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Savings account %s already exists", account.Number), err)
			case "foreign_key_violation":
				return model.SavingsAccount{}, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Member with ID '%s' not found", account.MemberID), err)
			}
		}
		return model.SavingsAccount{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create savings account", err)
	}

	return account, nil
}

func (d Datasource) GetSavingsAccountByID(id string) (*model.SavingsAccount, error) {
	row := d.Conn.QueryRow(fmt.Sprintf(`SELECT %s FROM savings_accounts WHERE savings_id = $1 OR number = $1`, savingsSelectColumns), id)

	account, err := scanSavingsRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Savings account with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve savings account", err)
	}

	return account, nil
}

func (d Datasource) GetSavingsAccountsByMember(memberID string) ([]model.SavingsAccount, error) {
	rows, err := d.Conn.Query(fmt.Sprintf(`
		SELECT %s FROM savings_accounts WHERE member_id = $1 ORDER BY created_at ASC
	`, savingsSelectColumns), memberID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve savings accounts", err)
	}
	defer rows.Close()

	accounts := []model.SavingsAccount{}
	for rows.Next() {
		account, err := scanSavingsRow(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan savings account data", err)
		}
		accounts = append(accounts, *account)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over savings accounts", err)
	}

	return accounts, nil
}

// WithdrawSavingsBalance debits the mirror balance, refusing when the
// remainder would fall below the account's minimum balance. The guard lives
// in the UPDATE itself so two overlapping withdrawals can never both pass it.
func (d Datasource) WithdrawSavingsBalance(ctx context.Context, id string, amount *big.Int) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE savings_accounts SET balance = balance - $2::numeric
		WHERE savings_id = $1 AND balance - $2::numeric >= minimum_balance
	`, id, amount.String())
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update savings balance", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update savings balance", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrBadRequest,
			fmt.Sprintf("Withdrawal would drop savings account '%s' below its minimum balance", id), amount.String())
	}

	return nil
}

// UpdateSavingsBalance shifts the mirror balance by delta. The ledger entries
// posted alongside remain the source of truth; the mirror only serves reads.
func (d Datasource) UpdateSavingsBalance(ctx context.Context, id string, delta *big.Int) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE savings_accounts SET balance = balance + $2::numeric WHERE savings_id = $1
	`, id, delta.String())
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update savings balance", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update savings balance", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Savings account with ID '%s' not found", id), nil)
	}

	return nil
}
