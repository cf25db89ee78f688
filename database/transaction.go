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
	"time"

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/lib/pq"
)

// RecordTransaction inserts a draft transaction together with its entries in
// a single database transaction. Nothing here touches account balances; that
// happens only in ApplyTransaction.
func (d Datasource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	metaDataJSON, err := json.Marshal(txn.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (transaction_id, code, description, status, reverses_id, hash, created_at, meta_data)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
	`, txn.TransactionID, txn.Code, txn.Description, txn.Status, txn.ReversesID, txn.Hash, txn.CreatedAt, metaDataJSON)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Transaction %s already exists", txn.Code), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record transaction", err)
	}

	for i := range txn.Entries {
		entry := &txn.Entries[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (entry_id, transaction_id, account_id, side, amount, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, entry.EntryID, txn.TransactionID, entry.AccountID, entry.Side, entry.Amount, entry.Description, entry.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record entry", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}

	return txn, nil
}

// GetTransaction retrieves a transaction by its id or its human-readable
// code, with entries in their caller-supplied order.
func (d Datasource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, code, COALESCE(description, ''), status, COALESCE(reverses_id, ''), COALESCE(reversed_by_id, ''), COALESCE(hash, ''), created_at, posted_at, meta_data
		FROM transactions
		WHERE transaction_id = $1 OR code = $1
	`, id)

	txn := model.Transaction{}
	var metaDataJSON []byte
	var postedAt sql.NullTime
	err := row.Scan(&txn.TransactionID, &txn.Code, &txn.Description, &txn.Status, &txn.ReversesID, &txn.ReversedByID,
		&txn.Hash, &txn.CreatedAt, &postedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Transaction not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transaction", err)
	}
	if postedAt.Valid {
		txn.PostedAt = postedAt.Time
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT entry_id, account_id, side, amount, COALESCE(description, ''), created_at
		FROM entries
		WHERE transaction_id = $1
		ORDER BY id ASC
	`, txn.TransactionID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry := model.Entry{TransactionID: txn.TransactionID}
		err = rows.Scan(&entry.EntryID, &entry.AccountID, &entry.Side, &entry.Amount, &entry.Description, &entry.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan entry data", err)
		}
		txn.Entries = append(txn.Entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over entries", err)
	}

	return &txn, nil
}

// ApplyTransaction is the posting commit point. In one database transaction
// it marks the draft posted, writes every touched account's new totals, and,
// when posting a reversal, flips the original transaction to REVERSED. Any
// failure rolls the whole unit back; a transaction is never observable
// half-applied.
func (d Datasource) ApplyTransaction(ctx context.Context, txn *model.Transaction, accounts []*model.Account) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE transactions SET status = $2, posted_at = $3, hash = $4
		WHERE transaction_id = $1 AND status = $5
	`, txn.TransactionID, model.StatusPosted, txn.PostedAt, txn.Hash, model.StatusDraft)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark transaction posted", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark transaction posted", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrAlreadyPosted, fmt.Sprintf("Transaction %s has already been posted", txn.Code), txn.TransactionID)
	}

	for _, account := range accounts {
		_, err = tx.ExecContext(ctx, `
			UPDATE accounts SET debit_total = $2, credit_total = $3, balance = $4
			WHERE account_id = $1
		`, account.AccountID, account.DebitTotal.String(), account.CreditTotal.String(), account.Balance.String())
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update account balance", err)
		}
	}

	if txn.ReversesID != "" {
		result, err = tx.ExecContext(ctx, `
			UPDATE transactions SET status = $2, reversed_by_id = $3
			WHERE transaction_id = $1 AND status = $4
		`, txn.ReversesID, model.StatusReversed, txn.TransactionID, model.StatusPosted)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark original transaction reversed", err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark original transaction reversed", err)
		}
		if affected == 0 {
			return apierror.NewAPIError(apierror.ErrAlreadyReversed, "Original transaction has already been reversed", txn.ReversesID)
		}
	}

	if err = tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit posting", err)
	}

	if d.Cache != nil {
		for _, account := range accounts {
			_ = d.Cache.Delete(ctx, fmt.Sprintf("account:%s", account.AccountID))
		}
	}

	return nil
}

func (d Datasource) GetAllTransactions(ctx context.Context, filter model.TransactionFilter, limit, offset int) ([]model.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.code, COALESCE(t.description, ''), t.status, COALESCE(t.reverses_id, ''), COALESCE(t.reversed_by_id, ''), COALESCE(t.hash, ''), t.created_at, t.posted_at
		FROM transactions t
	`
	args := []interface{}{}
	where := ""

	if filter.AccountID != "" {
		where = ` WHERE EXISTS (SELECT 1 FROM entries e WHERE e.transaction_id = t.transaction_id AND e.account_id = $1)`
		args = append(args, filter.AccountID)
	}
	if filter.Status != "" {
		if where == "" {
			where = fmt.Sprintf(` WHERE t.status = $%d`, len(args)+1)
		} else {
			where += fmt.Sprintf(` AND t.status = $%d`, len(args)+1)
		}
		args = append(args, filter.Status)
	}

	query += where + fmt.Sprintf(` ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn := model.Transaction{}
		var postedAt sql.NullTime
		err = rows.Scan(&txn.TransactionID, &txn.Code, &txn.Description, &txn.Status, &txn.ReversesID, &txn.ReversedByID,
			&txn.Hash, &txn.CreatedAt, &postedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction data", err)
		}
		if postedAt.Valid {
			txn.PostedAt = postedAt.Time
		}
		transactions = append(transactions, txn)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over transactions", err)
	}

	return transactions, nil
}

// SumEntriesAsOf replays the entry history for one account: it sums posted
// debits and credits up to asOf. Entries of transactions that were later
// reversed still count; the compensating transaction's entries cancel them.
func (d Datasource) SumEntriesAsOf(ctx context.Context, accountID string, asOf time.Time) (*big.Int, *big.Int, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(e.amount) FILTER (WHERE e.side = 'debit'), 0)::text,
			COALESCE(SUM(e.amount) FILTER (WHERE e.side = 'credit'), 0)::text
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1 AND t.posted_at IS NOT NULL AND t.posted_at <= $2
	`, accountID, asOf)

	var debitStr, creditStr string
	if err := row.Scan(&debitStr, &creditStr); err != nil {
		return nil, nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to replay entries", err)
	}

	debits, err := scanBigInt(debitStr)
	if err != nil {
		return nil, nil, err
	}
	credits, err := scanBigInt(creditStr)
	if err != nil {
		return nil, nil, err
	}
	return debits, credits, nil
}

// GetEntriesForAccount returns the posted entries against an account in the
// given period, oldest first, for statement rendering.
func (d Datasource) GetEntriesForAccount(ctx context.Context, accountID string, from, to time.Time) ([]model.Entry, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT e.entry_id, e.transaction_id, e.account_id, e.side, e.amount, COALESCE(e.description, ''), t.posted_at
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.account_id = $1 AND t.posted_at IS NOT NULL AND t.posted_at >= $2 AND t.posted_at <= $3
		ORDER BY t.posted_at ASC, e.id ASC
	`, accountID, from, to)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve entries", err)
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		entry := model.Entry{}
		err = rows.Scan(&entry.EntryID, &entry.TransactionID, &entry.AccountID, &entry.Side, &entry.Amount, &entry.Description, &entry.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan entry data", err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over entries", err)
	}

	return entries, nil
}
