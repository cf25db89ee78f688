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
	"time"

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
)

// RequestLoan records a loan application in pending status.
func (l *Coopledger) RequestLoan(loan model.Loan) (model.Loan, error) {
	if _, err := l.datasource.GetMemberByID(loan.MemberID); err != nil {
		return model.Loan{}, err
	}
	if loan.Principal <= 0 {
		return model.Loan{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Loan principal must be positive", loan.Principal)
	}
	if loan.Code == "" {
		loan.Code = model.GenerateLoanCode(time.Now())
	}
	return l.datasource.CreateLoan(loan)
}

// GetLoan retrieves a loan by id or code.
func (l *Coopledger) GetLoan(id string) (*model.Loan, error) {
	return l.datasource.GetLoanByID(id)
}

// GetMemberLoans lists a member's loans, newest first.
func (l *Coopledger) GetMemberLoans(memberID string) ([]model.Loan, error) {
	return l.datasource.GetLoansByMember(memberID)
}

// ApproveLoan moves a pending loan to approved.
func (l *Coopledger) ApproveLoan(id string) (*model.Loan, error) {
	loan, err := l.datasource.GetLoanByID(id)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Loan %s is %s; only pending loans can be approved", loan.Code, loan.Status), loan.Status)
	}
	loan.Status = model.LoanApproved
	if err := l.datasource.UpdateLoan(loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// RejectLoan moves a pending loan to rejected.
func (l *Coopledger) RejectLoan(id string, reason string) (*model.Loan, error) {
	loan, err := l.datasource.GetLoanByID(id)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanPending {
		return nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Loan %s is %s; only pending loans can be rejected", loan.Code, loan.Status), loan.Status)
	}
	loan.Status = model.LoanRejected
	if loan.MetaData == nil {
		loan.MetaData = make(map[string]interface{})
	}
	loan.MetaData["rejection_reason"] = reason
	if err := l.datasource.UpdateLoan(loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// DisburseLoan pays out an approved loan: it posts principal from Cash to
// Loans Receivable and opens the loan's principal balance.
func (l *Coopledger) DisburseLoan(ctx context.Context, id string) (*model.Loan, *model.Transaction, error) {
	loan, err := l.datasource.GetLoanByID(id)
	if err != nil {
		return nil, nil, err
	}
	if loan.Status != model.LoanApproved {
		return nil, nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Loan %s is %s; only approved loans can be disbursed", loan.Code, loan.Status), loan.Status)
	}

	transaction, err := l.postAgainstChart(ctx, fmt.Sprintf("Disbursement of loan %s", loan.Code), loan.Principal,
		CodeLoansReceivable, CodeCash, map[string]interface{}{
			"loan_id":   loan.LoanID,
			"member_id": loan.MemberID,
		})
	if err != nil {
		return nil, nil, err
	}

	loan.Status = model.LoanDisbursed
	loan.DisbursedAt = time.Now()
	loan.PrincipalBalance = model.Int64ToBigInt(loan.Principal)
	if err := l.datasource.UpdateLoan(loan); err != nil {
		return nil, nil, err
	}
	return loan, transaction, nil
}

// RepayLoan records a repayment split into principal and interest. Principal
// comes off Loans Receivable; interest is recognized as Interest Income. The
// loan moves to repaid when its principal balance reaches zero.
func (l *Coopledger) RepayLoan(ctx context.Context, id string, principal, interest int64) (*model.Loan, *model.Transaction, error) {
	loan, err := l.datasource.GetLoanByID(id)
	if err != nil {
		return nil, nil, err
	}
	if loan.Status != model.LoanDisbursed {
		return nil, nil, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Loan %s is %s; only disbursed loans accept repayments", loan.Code, loan.Status), loan.Status)
	}
	if principal <= 0 || interest < 0 {
		return nil, nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Repayment principal must be positive and interest non-negative", principal)
	}
	if loan.Outstanding().Cmp(model.Int64ToBigInt(principal)) < 0 {
		return nil, nil, apierror.NewAPIError(apierror.ErrBadRequest,
			fmt.Sprintf("Repayment principal %d exceeds outstanding balance %s on loan %s", principal, loan.Outstanding().String(), loan.Code), nil)
	}

	cash, err := l.datasource.GetAccountByCode(ctx, CodeCash)
	if err != nil {
		return nil, nil, err
	}
	receivable, err := l.datasource.GetAccountByCode(ctx, CodeLoansReceivable)
	if err != nil {
		return nil, nil, err
	}

	entries := []model.Entry{
		{AccountID: cash.AccountID, Side: model.Debit, Amount: principal + interest},
		{AccountID: receivable.AccountID, Side: model.Credit, Amount: principal},
	}
	if interest > 0 {
		income, err := l.datasource.GetAccountByCode(ctx, CodeInterestIncome)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, model.Entry{AccountID: income.AccountID, Side: model.Credit, Amount: interest})
	}

	transaction, err := l.OpenTransaction(ctx, fmt.Sprintf("Repayment on loan %s", loan.Code), entries, map[string]interface{}{
		"loan_id":   loan.LoanID,
		"member_id": loan.MemberID,
	})
	if err != nil {
		return nil, nil, err
	}
	transaction, err = l.postDraft(ctx, transaction, "transaction.posted")
	if err != nil {
		return nil, nil, err
	}

	loan.PrincipalBalance = new(big.Int).Sub(loan.Outstanding(), model.Int64ToBigInt(principal))
	if loan.PrincipalBalance.Sign() == 0 {
		loan.Status = model.LoanRepaid
	}
	if err := l.datasource.UpdateLoan(loan); err != nil {
		return nil, nil, err
	}
	return loan, transaction, nil
}
