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
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/coopledger/coopledger/internal/apierror"
	redlock "github.com/coopledger/coopledger/internal/lock"
	"github.com/coopledger/coopledger/internal/notification"
	"github.com/coopledger/coopledger/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("coopledger.ledger")

// OpenTransaction creates a draft transaction from the given entries. The
// draft is structurally validated (at least two entries, known sides,
// positive amounts, known unarchived accounts) but the balance law is only
// enforced at posting, so a draft may be saved imbalanced and corrected
// before post.
func (l *Coopledger) OpenTransaction(ctx context.Context, description string, entries []model.Entry, metaData map[string]interface{}) (*model.Transaction, error) {
	now := time.Now()
	transaction := &model.Transaction{
		TransactionID: model.GenerateUUIDWithSuffix("txn"),
		Code:          model.GenerateTransactionCode(now),
		Description:   description,
		Status:        model.StatusDraft,
		CreatedAt:     now,
		MetaData:      metaData,
	}
	for _, entry := range entries {
		entry.EntryID = model.GenerateUUIDWithSuffix("ent")
		entry.TransactionID = transaction.TransactionID
		entry.CreatedAt = now
		transaction.Entries = append(transaction.Entries, entry)
	}

	if err := l.validateStructure(ctx, transaction); err != nil {
		return nil, err
	}

	transaction.Hash = transaction.HashTxn()
	return l.datasource.RecordTransaction(ctx, transaction)
}

// ValidateTransaction checks a draft against the balance law. Any nonzero
// difference between the debit and credit sums, down to a single minor unit,
// fails with an imbalanced-entries error carrying the difference; a postable
// draft returns zero.
func (l *Coopledger) ValidateTransaction(ctx context.Context, id string) (*big.Int, error) {
	transaction, err := l.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.validateStructure(ctx, transaction); err != nil {
		return nil, err
	}
	imbalance := transaction.Imbalance()
	if imbalance.Sign() != 0 {
		return nil, apierror.NewAPIError(apierror.ErrImbalancedEntries,
			fmt.Sprintf("Transaction %s does not balance: debits differ from credits by %s minor units", transaction.Code, imbalance.String()),
			imbalance.String())
	}
	return imbalance, nil
}

// validateStructure enforces everything except the balance law: entry count,
// sides, amounts, and that every referenced account exists and is not
// archived.
func (l *Coopledger) validateStructure(ctx context.Context, transaction *model.Transaction) error {
	if len(transaction.Entries) < 2 {
		return apierror.NewAPIError(apierror.ErrEmptyTransaction, "A transaction requires at least two entries", len(transaction.Entries))
	}
	for _, entry := range transaction.Entries {
		if !entry.Side.Valid() {
			return apierror.NewAPIError(apierror.ErrInvalidInput, "Entry side must be debit or credit", entry.Side)
		}
		if entry.Amount <= 0 {
			return apierror.NewAPIError(apierror.ErrInvalidInput, "Entry amounts must be positive", entry.Amount)
		}
	}
	_, err := l.loadAccounts(ctx, transaction, false)
	return err
}

// loadAccounts fetches every account the transaction touches, deduplicated.
// The posting path reads straight from the database: deltas must apply to the
// last committed totals, and a cached copy may predate the last posting.
func (l *Coopledger) loadAccounts(ctx context.Context, transaction *model.Transaction, forPosting bool) (map[string]*model.Account, error) {
	fetch := l.datasource.GetAccountByID
	if forPosting {
		fetch = l.datasource.GetAccountForPosting
	}

	accounts := make(map[string]*model.Account)
	for _, entry := range transaction.Entries {
		if _, ok := accounts[entry.AccountID]; ok {
			continue
		}
		account, err := fetch(ctx, entry.AccountID)
		if err != nil {
			if apierror.CodeOf(err) == apierror.ErrNotFound {
				return nil, apierror.NewAPIError(apierror.ErrUnknownAccount, fmt.Sprintf("Account %s does not exist", entry.AccountID), err)
			}
			return nil, err
		}
		if account.Archived {
			return nil, apierror.NewAPIError(apierror.ErrUnknownAccount, fmt.Sprintf("Account %s is archived and rejects new entries", account.Code), account.AccountID)
		}
		accounts[entry.AccountID] = account
	}
	return accounts, nil
}

const (
	postingLockTTL  = time.Minute
	postingLockWait = 5 * time.Second
)

func postingLockKey(accountID string) string {
	return "post:" + accountID
}

// acquireLocks takes one posting lock per account the transaction touches.
// Per-account keys make two postings with overlapping account sets contend on
// the shared account, and acquiring in sorted id order keeps two such
// postings from deadlocking against each other.
func (l *Coopledger) acquireLocks(ctx context.Context, transaction *model.Transaction) ([]*redlock.Locker, error) {
	ids := make([]string, 0, len(transaction.Entries))
	seen := make(map[string]bool)
	for _, entry := range transaction.Entries {
		if !seen[entry.AccountID] {
			seen[entry.AccountID] = true
			ids = append(ids, entry.AccountID)
		}
	}
	sort.Strings(ids)

	lockers := make([]*redlock.Locker, 0, len(ids))
	for _, id := range ids {
		locker := redlock.NewLocker(l.redis, postingLockKey(id), model.GenerateUUIDWithSuffix("loc"))
		if err := locker.WaitLock(ctx, postingLockTTL, postingLockWait); err != nil {
			l.releaseLocks(ctx, lockers)
			return nil, err
		}
		lockers = append(lockers, locker)
	}
	return lockers, nil
}

func (l *Coopledger) releaseLocks(ctx context.Context, lockers []*redlock.Locker) {
	for i := len(lockers) - 1; i >= 0; i-- {
		if err := lockers[i].Unlock(ctx); err != nil {
			logrus.Error("posting lock release error: ", err)
		}
	}
}

// PostTransaction posts a draft. The balance law is enforced here, the
// posting lock serializes against the touched accounts, and the datasource
// applies the whole unit in one database transaction. A posted transaction
// is immutable.
func (l *Coopledger) PostTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Posting transaction")
	defer span.End()

	transaction, err := l.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	return l.postDraft(ctx, transaction, "transaction.posted")
}

func (l *Coopledger) postDraft(ctx context.Context, transaction *model.Transaction, event string) (*model.Transaction, error) {
	switch transaction.Status {
	case model.StatusDraft:
	case model.StatusReversed:
		return nil, apierror.NewAPIError(apierror.ErrAlreadyReversed, fmt.Sprintf("Transaction %s has been reversed", transaction.Code), transaction.TransactionID)
	default:
		return nil, apierror.NewAPIError(apierror.ErrAlreadyPosted, fmt.Sprintf("Transaction %s has already been posted", transaction.Code), transaction.TransactionID)
	}

	if len(transaction.Entries) < 2 {
		return nil, apierror.NewAPIError(apierror.ErrEmptyTransaction, "A transaction requires at least two entries", len(transaction.Entries))
	}
	if !transaction.Balanced() {
		return nil, apierror.NewAPIError(apierror.ErrImbalancedEntries,
			fmt.Sprintf("Transaction %s does not balance: debits differ from credits by %s minor units", transaction.Code, transaction.Imbalance().String()),
			transaction.Imbalance().String())
	}

	lockers, err := l.acquireLocks(ctx, transaction)
	if err != nil {
		return nil, err
	}
	defer l.releaseLocks(ctx, lockers)

	accounts, err := l.loadAccounts(ctx, transaction, true)
	if err != nil {
		return nil, err
	}

	applied := make([]*model.Account, 0, len(accounts))
	for i := range transaction.Entries {
		entry := &transaction.Entries[i]
		if err := accounts[entry.AccountID].ApplyEntry(entry); err != nil {
			return nil, err
		}
	}
	for _, account := range accounts {
		applied = append(applied, account)
	}

	transaction.Status = model.StatusPosted
	transaction.PostedAt = time.Now()
	transaction.Hash = transaction.HashTxn()

	if err := l.datasource.ApplyTransaction(ctx, transaction, applied); err != nil {
		return nil, err
	}

	l.postTransactionActions(event, transaction)
	return transaction, nil
}

// ReverseTransaction synthesizes and posts the compensating transaction for
// a posted one. The original is marked reversed in the same database
// transaction that posts the reversal, so the pair is never observable
// half-done.
func (l *Coopledger) ReverseTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Reversing transaction")
	defer span.End()

	original, err := l.datasource.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	switch original.Status {
	case model.StatusPosted:
	case model.StatusReversed:
		return nil, apierror.NewAPIError(apierror.ErrAlreadyReversed, fmt.Sprintf("Transaction %s has already been reversed", original.Code), original.TransactionID)
	default:
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("Transaction %s is a draft; only posted transactions can be reversed", original.Code), original.Status)
	}

	reversal := original.BuildReversal()
	reversal, err = l.datasource.RecordTransaction(ctx, reversal)
	if err != nil {
		return nil, err
	}

	return l.postDraft(ctx, reversal, "transaction.reversed")
}

// GetTransaction retrieves a transaction with its entries, by id or code.
func (l *Coopledger) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return l.datasource.GetTransaction(ctx, id)
}

// GetAllTransactions lists transactions, newest first.
func (l *Coopledger) GetAllTransactions(ctx context.Context, filter model.TransactionFilter, limit, offset int) ([]model.Transaction, error) {
	return l.datasource.GetAllTransactions(ctx, filter, limit, offset)
}

// AccountBalance returns an account's balance. With a zero asOf it reads the
// incrementally maintained balance; with asOf set it replays the posted
// entries up to that instant. The two paths agree for asOf >= the last
// posting, which is the ledger's principal correctness property.
func (l *Coopledger) AccountBalance(ctx context.Context, id string, asOf time.Time) (*model.Account, error) {
	account, err := l.datasource.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		return account, nil
	}

	debits, credits, err := l.datasource.SumEntriesAsOf(ctx, id, asOf)
	if err != nil {
		return nil, err
	}
	account.DebitTotal = debits
	account.CreditTotal = credits
	account.Balance = account.Category.BalanceFromTotals(debits, credits)
	return account, nil
}

func (l *Coopledger) postTransactionActions(event string, transaction *model.Transaction) {
	go func() {
		err := notification.SendWebhook(notification.Webhook{
			Event:   event,
			Payload: transaction,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}
