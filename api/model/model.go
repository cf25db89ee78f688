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
package model

import (
	"errors"

	"github.com/coopledger/coopledger/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a major-unit decimal string ("100.00") to minor
// units. At most two decimal places are accepted; the engine works in exact
// minor units only.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, errors.New("amount must be a decimal number, e.g. 100.00")
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, errors.New("amount supports at most two decimal places")
	}
	if !minor.IsPositive() {
		return 0, errors.New("amount must be positive")
	}
	return minor.IntPart(), nil
}

type CreateAccount struct {
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	MetaData    map[string]interface{} `json:"meta_data"`
}

func (a *CreateAccount) ValidateCreateAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Code, validation.Required),
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.Category, validation.Required, validation.In("asset", "liability", "equity", "income", "expense")),
	)
}

func (a *CreateAccount) ToAccount() model.Account {
	return model.Account{
		Code:        a.Code,
		Name:        a.Name,
		Category:    model.AccountCategory(a.Category),
		Description: a.Description,
		MetaData:    a.MetaData,
	}
}

type TransactionEntry struct {
	AccountID   string `json:"account_id"`
	Side        string `json:"side"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type OpenTransaction struct {
	Description string                 `json:"description"`
	Entries     []TransactionEntry     `json:"entries"`
	MetaData    map[string]interface{} `json:"meta_data"`
}

func (t *OpenTransaction) ValidateOpenTransaction() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Description, validation.Required),
		validation.Field(&t.Entries, validation.Required, validation.Length(2, 0)),
	)
}

// ToEntries converts the request entries to minor-unit engine entries.
func (t *OpenTransaction) ToEntries() ([]model.Entry, error) {
	entries := make([]model.Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		side := model.Side(e.Side)
		if !side.Valid() {
			return nil, errors.New("entry side must be debit or credit")
		}
		amount, err := ParseAmount(e.Amount)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.Entry{
			AccountID:   e.AccountID,
			Side:        side,
			Amount:      amount,
			Description: e.Description,
		})
	}
	return entries, nil
}

type CreateMember struct {
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	OtherNames     string                 `json:"other_names"`
	Gender         string                 `json:"gender"`
	EmailAddress   string                 `json:"email_address"`
	PhoneNumber    string                 `json:"phone_number"`
	Street         string                 `json:"street"`
	City           string                 `json:"city"`
	State          string                 `json:"state"`
	Country        string                 `json:"country"`
	MonthlySavings string                 `json:"monthly_savings"`
	MetaData       map[string]interface{} `json:"meta_data"`
}

func (m *CreateMember) ValidateCreateMember() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.FirstName, validation.Required),
		validation.Field(&m.LastName, validation.Required),
		validation.Field(&m.EmailAddress, validation.Required),
	)
}

func (m *CreateMember) ToMember() (model.Member, error) {
	member := model.Member{
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		OtherNames:   m.OtherNames,
		Gender:       m.Gender,
		EmailAddress: m.EmailAddress,
		PhoneNumber:  m.PhoneNumber,
		Street:       m.Street,
		City:         m.City,
		State:        m.State,
		Country:      m.Country,
		MetaData:     m.MetaData,
	}
	if m.MonthlySavings != "" {
		amount, err := ParseAmount(m.MonthlySavings)
		if err != nil {
			return model.Member{}, err
		}
		member.MonthlySavings = amount
	}
	return member, nil
}

type UpdateMember struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PhoneNumber    string `json:"phone_number"`
	EmailAddress   string `json:"email_address"`
	Status         string `json:"status"`
	MonthlySavings string `json:"monthly_savings"`
}

func (m *UpdateMember) ValidateUpdateMember() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Status, validation.In("active", "inactive", "suspended")),
	)
}

type OpenSavingsAccount struct {
	MemberID       string  `json:"member_id"`
	MinimumBalance string  `json:"minimum_balance"`
	InterestRate   float64 `json:"interest_rate"`
}

func (s *OpenSavingsAccount) ValidateOpenSavingsAccount() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.MemberID, validation.Required),
	)
}

func (s *OpenSavingsAccount) ToSavingsAccount() (model.SavingsAccount, error) {
	account := model.SavingsAccount{
		MemberID:     s.MemberID,
		InterestRate: s.InterestRate,
	}
	if s.MinimumBalance != "" {
		minimum, err := ParseAmount(s.MinimumBalance)
		if err != nil {
			return model.SavingsAccount{}, err
		}
		account.MinimumBalance = minimum
	}
	return account, nil
}

// SavingsMovement is the body of deposit and withdrawal requests.
type SavingsMovement struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (m *SavingsMovement) ValidateSavingsMovement() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Amount, validation.Required),
	)
}

type CreateLoan struct {
	MemberID     string  `json:"member_id"`
	Principal    string  `json:"principal"`
	InterestRate float64 `json:"interest_rate"`
	TermMonths   int     `json:"term_months"`
}

func (l *CreateLoan) ValidateCreateLoan() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.MemberID, validation.Required),
		validation.Field(&l.Principal, validation.Required),
		validation.Field(&l.TermMonths, validation.Required, validation.Min(1)),
	)
}

func (l *CreateLoan) ToLoan() (model.Loan, error) {
	principal, err := ParseAmount(l.Principal)
	if err != nil {
		return model.Loan{}, err
	}
	return model.Loan{
		MemberID:     l.MemberID,
		Principal:    principal,
		InterestRate: l.InterestRate,
		TermMonths:   l.TermMonths,
	}, nil
}

type RejectLoan struct {
	Reason string `json:"reason"`
}

type RepayLoan struct {
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
}

func (r *RepayLoan) ValidateRepayLoan() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Principal, validation.Required),
	)
}

// ToMinorUnits parses the repayment split. Interest defaults to zero.
func (r *RepayLoan) ToMinorUnits() (principal, interest int64, err error) {
	principal, err = ParseAmount(r.Principal)
	if err != nil {
		return 0, 0, err
	}
	if r.Interest != "" {
		interest, err = ParseAmount(r.Interest)
		if err != nil {
			return 0, 0, err
		}
	}
	return principal, interest, nil
}
