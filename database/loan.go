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
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/lib/pq"
)

const loanSelectColumns = `loan_id, code, member_id, principal, interest_rate, term_months, status, principal_balance, disbursed_at, created_at, meta_data`

func scanLoanRow(row interface {
	Scan(dest ...interface{}) error
}) (*model.Loan, error) {
	loan := model.Loan{}
	var balanceStr string
	var metaDataJSON []byte
	var disbursedAt sql.NullTime
	err := row.Scan(&loan.LoanID, &loan.Code, &loan.MemberID, &loan.Principal, &loan.InterestRate, &loan.TermMonths,
		&loan.Status, &balanceStr, &disbursedAt, &loan.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}
	if disbursedAt.Valid {
		loan.DisbursedAt = disbursedAt.Time
	}
	loan.PrincipalBalance, err = scanBigInt(balanceStr)
	if err != nil {
		return nil, err
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &loan.MetaData); err != nil {
			return nil, err
		}
	}
	return &loan, nil
}

func (d Datasource) CreateLoan(loan model.Loan) (model.Loan, error) {
	metaDataJSON, err := json.Marshal(loan.MetaData)
	if err != nil {
		return model.Loan{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	loan.LoanID = model.GenerateUUIDWithSuffix("lon")
	loan.InitializeBalance()
	if loan.Status == "" {
		loan.Status = model.LoanPending
	}

	_, err = d.Conn.Exec(`
		INSERT INTO loans (loan_id, code, member_id, principal, interest_rate, term_months, status, principal_balance, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), $9)
	`, loan.LoanID, loan.Code, loan.MemberID, loan.Principal, loan.InterestRate, loan.TermMonths, loan.Status,
		loan.PrincipalBalance.String(), metaDataJSON)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return model.Loan{}, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Loan %s already exists", loan.Code), err)
			case "foreign_key_violation":
				return model.Loan{}, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Member with ID '%s' not found", loan.MemberID), err)
			}
		}
		return model.Loan{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create loan", err)
	}

	return loan, nil
}

func (d Datasource) GetLoanByID(id string) (*model.Loan, error) {
	row := d.Conn.QueryRow(fmt.Sprintf(`SELECT %s FROM loans WHERE loan_id = $1 OR code = $1`, loanSelectColumns), id)

	loan, err := scanLoanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Loan with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve loan", err)
	}

	return loan, nil
}

func (d Datasource) GetLoansByMember(memberID string) ([]model.Loan, error) {
	rows, err := d.Conn.Query(fmt.Sprintf(`
		SELECT %s FROM loans WHERE member_id = $1 ORDER BY created_at DESC
	`, loanSelectColumns), memberID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve loans", err)
	}
	defer rows.Close()

	loans := []model.Loan{}
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan loan data", err)
		}
		loans = append(loans, *loan)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over loans", err)
	}

	return loans, nil
}

func (d Datasource) UpdateLoan(loan *model.Loan) error {
	loan.InitializeBalance()
	disbursedAt := sql.NullTime{Time: loan.DisbursedAt, Valid: !loan.DisbursedAt.IsZero()}
	result, err := d.Conn.Exec(`
		UPDATE loans SET status = $2, principal_balance = $3, disbursed_at = $4
		WHERE loan_id = $1
	`, loan.LoanID, loan.Status, loan.PrincipalBalance.String(), disbursedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update loan", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update loan", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Loan with ID '%s' not found", loan.LoanID), nil)
	}

	return nil
}
