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
	"time"

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/sirupsen/logrus"
)

// Chart codes the savings and loan flows post against.
const (
	CodeCash            = "1000"
	CodeLoansReceivable = "1200"
	CodeMemberSavings   = "2000"
	CodeInterestIncome  = "4000"
)

// OpenSavingsAccount opens a savings account for a member.
func (l *Coopledger) OpenSavingsAccount(account model.SavingsAccount) (model.SavingsAccount, error) {
	if _, err := l.datasource.GetMemberByID(account.MemberID); err != nil {
		return model.SavingsAccount{}, err
	}
	if account.Number == "" {
		account.Number = model.GenerateSavingsNumber(time.Now())
	}
	return l.datasource.CreateSavingsAccount(account)
}

// GetSavingsAccount retrieves a savings account by id or number.
func (l *Coopledger) GetSavingsAccount(id string) (*model.SavingsAccount, error) {
	return l.datasource.GetSavingsAccountByID(id)
}

// GetMemberSavingsAccounts lists a member's savings accounts.
func (l *Coopledger) GetMemberSavingsAccounts(memberID string) ([]model.SavingsAccount, error) {
	return l.datasource.GetSavingsAccountsByMember(memberID)
}

// Deposit records a member deposit as a posted ledger transaction debiting
// Cash and crediting Member Savings, then shifts the savings mirror. The
// ledger transaction is the source of truth; the mirror serves reads.
func (l *Coopledger) Deposit(ctx context.Context, savingsID string, amount int64, description string) (*model.Transaction, error) {
	account, err := l.datasource.GetSavingsAccountByID(savingsID)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("Deposit to %s", account.Number)
	}

	transaction, err := l.postAgainstChart(ctx, description, amount, CodeCash, CodeMemberSavings, map[string]interface{}{
		"savings_id": account.SavingsID,
		"member_id":  account.MemberID,
	})
	if err != nil {
		return nil, err
	}

	if err := l.datasource.UpdateSavingsBalance(ctx, account.SavingsID, model.Int64ToBigInt(amount)); err != nil {
		return nil, err
	}
	return transaction, nil
}

// Withdraw records a member withdrawal, debiting Member Savings and
// crediting Cash. The mirror is debited first under a minimum-balance guard
// enforced inside the UPDATE, so two overlapping withdrawals can never both
// overdraw; if the ledger posting then fails, the mirror debit is restored.
func (l *Coopledger) Withdraw(ctx context.Context, savingsID string, amount int64, description string) (*model.Transaction, error) {
	account, err := l.datasource.GetSavingsAccountByID(savingsID)
	if err != nil {
		return nil, err
	}
	if !account.CanWithdraw(amount) {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest,
			fmt.Sprintf("Withdrawal of %d would drop %s below its minimum balance", amount, account.Number), account.Balance.String())
	}
	if err := l.datasource.WithdrawSavingsBalance(ctx, account.SavingsID, model.Int64ToBigInt(amount)); err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("Withdrawal from %s", account.Number)
	}

	transaction, err := l.postAgainstChart(ctx, description, amount, CodeMemberSavings, CodeCash, map[string]interface{}{
		"savings_id": account.SavingsID,
		"member_id":  account.MemberID,
	})
	if err != nil {
		if restoreErr := l.datasource.UpdateSavingsBalance(ctx, account.SavingsID, model.Int64ToBigInt(amount)); restoreErr != nil {
			logrus.Error("failed to restore savings balance after aborted withdrawal: ", restoreErr)
		}
		return nil, err
	}
	return transaction, nil
}

// postAgainstChart opens and immediately posts a two-entry transaction
// between two chart accounts identified by code.
func (l *Coopledger) postAgainstChart(ctx context.Context, description string, amount int64, debitCode, creditCode string, metaData map[string]interface{}) (*model.Transaction, error) {
	debitAccount, err := l.datasource.GetAccountByCode(ctx, debitCode)
	if err != nil {
		return nil, err
	}
	creditAccount, err := l.datasource.GetAccountByCode(ctx, creditCode)
	if err != nil {
		return nil, err
	}

	transaction, err := l.OpenTransaction(ctx, description, []model.Entry{
		{AccountID: debitAccount.AccountID, Side: model.Debit, Amount: amount},
		{AccountID: creditAccount.AccountID, Side: model.Credit, Amount: amount},
	}, metaData)
	if err != nil {
		return nil, err
	}
	return l.postDraft(ctx, transaction, "transaction.posted")
}
