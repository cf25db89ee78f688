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

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/sirupsen/logrus"
)

// CreateAccount adds an account to the chart of accounts.
func (l *Coopledger) CreateAccount(account model.Account) (model.Account, error) {
	return l.datasource.CreateAccount(account)
}

// GetAccount retrieves an account by its id.
func (l *Coopledger) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return l.datasource.GetAccountByID(ctx, id)
}

// GetAccountByCode retrieves an account by its chart code.
func (l *Coopledger) GetAccountByCode(ctx context.Context, code string) (*model.Account, error) {
	return l.datasource.GetAccountByCode(ctx, code)
}

// GetAllAccounts lists accounts in the chart, ordered by code.
func (l *Coopledger) GetAllAccounts(filter model.AccountFilter, limit, offset int) ([]model.Account, error) {
	return l.datasource.GetAllAccounts(filter, limit, offset)
}

// ArchiveAccount marks an account archived. Archived accounts keep their
// entry history and reject new entries.
func (l *Coopledger) ArchiveAccount(ctx context.Context, id string) error {
	return l.datasource.ArchiveAccount(ctx, id)
}

type seedAccount struct {
	Code        string
	Name        string
	Category    model.AccountCategory
	Description string
}

var defaultChart = []seedAccount{
	{"1000", "Cash", model.CategoryAsset, "Cash on hand"},
	{"1100", "Bank Account", model.CategoryAsset, "Cash held at bank"},
	{"1200", "Loans Receivable", model.CategoryAsset, "Outstanding member loan principal"},
	{"1300", "Fixed Assets", model.CategoryAsset, "Property and equipment"},
	{"2000", "Member Savings", model.CategoryLiability, "Savings owed to members"},
	{"2100", "Accounts Payable", model.CategoryLiability, "Amounts owed to suppliers"},
	{"2200", "Accrued Expenses", model.CategoryLiability, "Expenses incurred, not yet paid"},
	{"3000", "Share Capital", model.CategoryEquity, "Members' share contributions"},
	{"3100", "Retained Earnings", model.CategoryEquity, "Accumulated surplus"},
	{"3200", "Reserves", model.CategoryEquity, "Statutory and voluntary reserves"},
	{"4000", "Interest Income", model.CategoryIncome, "Interest earned on member loans"},
	{"4100", "Service Charges", model.CategoryIncome, "Fees charged to members"},
	{"4200", "Other Income", model.CategoryIncome, "Income outside lending"},
	{"5000", "Administrative Expenses", model.CategoryExpense, "Administration costs"},
	{"5100", "Interest Expense", model.CategoryExpense, "Interest paid on member savings"},
	{"5200", "Operating Expenses", model.CategoryExpense, "Day to day running costs"},
}

// SeedChartOfAccounts creates the cooperative's default chart of accounts.
// Accounts that already exist are left untouched, so seeding is safe to run
// repeatedly.
func (l *Coopledger) SeedChartOfAccounts(ctx context.Context) (created int, err error) {
	for _, seed := range defaultChart {
		if _, err := l.datasource.GetAccountByCode(ctx, seed.Code); err == nil {
			continue
		} else if apierror.CodeOf(err) != apierror.ErrNotFound {
			return created, err
		}
		_, err := l.datasource.CreateAccount(model.Account{
			Code:        seed.Code,
			Name:        seed.Name,
			Category:    seed.Category,
			Description: seed.Description,
		})
		if err != nil {
			return created, err
		}
		logrus.Infof("created account %s %s", seed.Code, seed.Name)
		created++
	}
	return created, nil
}
