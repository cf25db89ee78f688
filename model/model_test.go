package model

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	module := "txn"
	id := GenerateUUIDWithSuffix(module)
	assert.Contains(t, id, module+"_")
}

func TestGenerateTransactionCode(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	code := GenerateTransactionCode(at)
	assert.Len(t, code, 3+8+8)
	assert.Equal(t, "TXN20250314", code[:11])
	second := GenerateTransactionCode(at)
	assert.NotEqual(t, code, second)
}

func TestInt64ToBigInt(t *testing.T) {
	value := int64(123456789)
	bigIntValue := Int64ToBigInt(value)
	expected := big.NewInt(value)
	assert.Equal(t, expected, bigIntValue)
}

func TestCompare(t *testing.T) {
	value := big.NewInt(10)
	compareTo := big.NewInt(20)

	assert.True(t, compare(value, "<", compareTo))
	assert.False(t, compare(value, ">", compareTo))
	assert.True(t, compare(value, "<=", compareTo))
	assert.False(t, compare(value, ">=", compareTo))
	assert.True(t, compare(value, "!=", compareTo))
	assert.False(t, compare(value, "==", compareTo))
}

func TestCategory_NormalSide(t *testing.T) {
	assert.Equal(t, Debit, CategoryAsset.NormalSide())
	assert.Equal(t, Debit, CategoryExpense.NormalSide())
	assert.Equal(t, Credit, CategoryLiability.NormalSide())
	assert.Equal(t, Credit, CategoryEquity.NormalSide())
	assert.Equal(t, Credit, CategoryIncome.NormalSide())
}

func TestAccount_ApplyEntry_DebitNormal(t *testing.T) {
	account := &Account{
		AccountID: "acc_cash",
		Code:      "1000",
		Category:  CategoryAsset,
	}

	err := account.ApplyEntry(&Entry{AccountID: "acc_cash", Side: Debit, Amount: 10000})
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), account.Balance)

	err = account.ApplyEntry(&Entry{AccountID: "acc_cash", Side: Credit, Amount: 2500})
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(7500), account.Balance)
	assert.Equal(t, big.NewInt(10000), account.DebitTotal)
	assert.Equal(t, big.NewInt(2500), account.CreditTotal)
}

func TestAccount_ApplyEntry_CreditNormal(t *testing.T) {
	account := &Account{
		AccountID: "acc_income",
		Code:      "4000",
		Category:  CategoryIncome,
	}

	err := account.ApplyEntry(&Entry{AccountID: "acc_income", Side: Credit, Amount: 10000})
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), account.Balance)

	err = account.ApplyEntry(&Entry{AccountID: "acc_income", Side: Debit, Amount: 4000})
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(6000), account.Balance)
}

func TestAccount_ApplyEntry_WrongAccount(t *testing.T) {
	account := &Account{AccountID: "acc_cash", Category: CategoryAsset}
	err := account.ApplyEntry(&Entry{AccountID: "acc_other", Side: Debit, Amount: 100})
	assert.Error(t, err)
}

func TestTransaction_Balanced(t *testing.T) {
	txn := &Transaction{
		Entries: []Entry{
			{AccountID: "acc_cash", Side: Debit, Amount: 10000},
			{AccountID: "acc_income", Side: Credit, Amount: 10000},
		},
	}
	assert.True(t, txn.Balanced())

	// One minor unit off must fail the balance law.
	txn.Entries[1].Amount = 9999
	assert.False(t, txn.Balanced())
	assert.Equal(t, big.NewInt(1), txn.Imbalance())
}

func TestTransaction_SumSides_OrderIndependent(t *testing.T) {
	forward := &Transaction{
		Entries: []Entry{
			{AccountID: "a", Side: Debit, Amount: 300},
			{AccountID: "b", Side: Debit, Amount: 700},
			{AccountID: "c", Side: Credit, Amount: 1000},
		},
	}
	backward := &Transaction{
		Entries: []Entry{
			{AccountID: "c", Side: Credit, Amount: 1000},
			{AccountID: "b", Side: Debit, Amount: 700},
			{AccountID: "a", Side: Debit, Amount: 300},
		},
	}

	fd, fc := forward.SumSides()
	bd, bc := backward.SumSides()
	assert.Equal(t, fd, bd)
	assert.Equal(t, fc, bc)
}

func TestTransaction_BuildReversal(t *testing.T) {
	original := &Transaction{
		TransactionID: "txn_1",
		Code:          "TXN20250314ABCDEF12",
		Status:        StatusPosted,
		Entries: []Entry{
			{AccountID: "acc_cash", Side: Debit, Amount: 10000},
			{AccountID: "acc_income", Side: Credit, Amount: 10000},
		},
	}

	reversal := original.BuildReversal()
	assert.Equal(t, StatusDraft, reversal.Status)
	assert.Equal(t, original.TransactionID, reversal.ReversesID)
	assert.Len(t, reversal.Entries, 2)
	assert.Equal(t, Credit, reversal.Entries[0].Side)
	assert.Equal(t, Debit, reversal.Entries[1].Side)
	assert.Equal(t, original.Entries[0].Amount, reversal.Entries[0].Amount)
	assert.True(t, reversal.Balanced())
	assert.NotEmpty(t, reversal.Hash)
}

func TestTransaction_HashTxn_Deterministic(t *testing.T) {
	txn := &Transaction{
		Description: "monthly deposit",
		Entries: []Entry{
			{AccountID: "acc_cash", Side: Debit, Amount: 5000},
			{AccountID: "acc_savings", Side: Credit, Amount: 5000},
		},
	}
	first := txn.HashTxn()
	second := txn.HashTxn()
	assert.Equal(t, first, second)

	txn.Entries[0].Amount = 5001
	assert.NotEqual(t, first, txn.HashTxn())
}

func TestSide_Flip(t *testing.T) {
	assert.Equal(t, Credit, Debit.Flip())
	assert.Equal(t, Debit, Credit.Flip())
}

func TestSavingsAccount_CanWithdraw(t *testing.T) {
	account := &SavingsAccount{
		Balance:        big.NewInt(50000),
		MinimumBalance: 10000,
	}
	assert.True(t, account.CanWithdraw(40000))
	assert.False(t, account.CanWithdraw(40001))
}
