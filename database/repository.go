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
	"time"

	"github.com/coopledger/coopledger/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	transaction // Interface for transaction and entry operations
	account     // Interface for chart-of-accounts operations
	member      // Interface for member registry operations
	savings     // Interface for savings account operations
	loan        // Interface for loan operations
	metadata    // Interface for entity metadata updates
}

// transaction defines methods for recording and posting ledger transactions.
type transaction interface {
	RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)                       // Inserts a draft transaction with its entries
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)                                       // Retrieves a transaction with its entries, by id or code
	ApplyTransaction(ctx context.Context, txn *model.Transaction, accounts []*model.Account) error                   // Atomically marks posted and applies balance deltas
	GetAllTransactions(ctx context.Context, filter model.TransactionFilter, limit, offset int) ([]model.Transaction, error) // Lists transactions
	SumEntriesAsOf(ctx context.Context, accountID string, asOf time.Time) (debits, credits *big.Int, err error)      // Replays posted entries for an account
	GetEntriesForAccount(ctx context.Context, accountID string, from, to time.Time) ([]model.Entry, error)           // Entries against an account, oldest first
}

// account defines methods for the chart of accounts.
type account interface {
	CreateAccount(account model.Account) (model.Account, error)            // Creates a new account
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)      // Retrieves an account by id, cache-assisted
	GetAccountForPosting(ctx context.Context, id string) (*model.Account, error) // Uncached read for the posting path
	GetAccountByCode(ctx context.Context, code string) (*model.Account, error)
	GetAllAccounts(filter model.AccountFilter, limit, offset int) ([]model.Account, error)
	ArchiveAccount(ctx context.Context, id string) error // Archives an account; archived accounts reject new entries
}

// member defines methods for the member registry.
type member interface {
	CreateMember(member model.Member) (model.Member, error)
	GetMemberByID(id string) (*model.Member, error)
	GetAllMembers(limit, offset int) ([]model.Member, error)
	UpdateMember(member *model.Member) error
}

// savings defines methods for members' savings accounts.
type savings interface {
	CreateSavingsAccount(account model.SavingsAccount) (model.SavingsAccount, error)
	GetSavingsAccountByID(id string) (*model.SavingsAccount, error)
	GetSavingsAccountsByMember(memberID string) ([]model.SavingsAccount, error)
	UpdateSavingsBalance(ctx context.Context, id string, delta *big.Int) error     // Adjusts the mirror balance by delta
	WithdrawSavingsBalance(ctx context.Context, id string, amount *big.Int) error // Debits the mirror under the minimum-balance guard
}

// loan defines methods for loans.
type loan interface {
	CreateLoan(loan model.Loan) (model.Loan, error)
	GetLoanByID(id string) (*model.Loan, error)
	GetLoansByMember(memberID string) ([]model.Loan, error)
	UpdateLoan(loan *model.Loan) error
}

// metadata defines methods for replacing the stored metadata of ledger
// entities.
type metadata interface {
	UpdateTransactionMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
	UpdateAccountMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
	UpdateMemberMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
	UpdateSavingsMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
	UpdateLoanMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
}
