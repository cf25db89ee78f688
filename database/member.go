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

const memberSelectColumns = `member_id, first_name, last_name, COALESCE(other_names, ''), COALESCE(gender, ''), COALESCE(email_address, ''), COALESCE(phone_number, ''), COALESCE(street, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''), status, monthly_savings, created_at, meta_data`

func scanMemberRow(row interface {
	Scan(dest ...interface{}) error
}) (*model.Member, error) {
	member := model.Member{}
	var metaDataJSON []byte
	err := row.Scan(&member.MemberID, &member.FirstName, &member.LastName, &member.OtherNames, &member.Gender,
		&member.EmailAddress, &member.PhoneNumber, &member.Street, &member.City, &member.State, &member.Country,
		&member.Status, &member.MonthlySavings, &member.CreatedAt, &metaDataJSON)
	if err != nil {
		return nil, err
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &member.MetaData); err != nil {
			return nil, err
		}
	}
	return &member, nil
}

func (d Datasource) CreateMember(member model.Member) (model.Member, error) {
	metaDataJSON, err := json.Marshal(member.MetaData)
	if err != nil {
		return model.Member{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	member.MemberID = model.GenerateUUIDWithSuffix("mem")
	if member.Status == "" {
		member.Status = model.MemberActive
	}

	_, err = d.Conn.Exec(`
		INSERT INTO members (member_id, first_name, last_name, other_names, gender, email_address, phone_number, street, city, state, country, status, monthly_savings, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), $14)
	`, member.MemberID, member.FirstName, member.LastName, member.OtherNames, member.Gender, member.EmailAddress,
		member.PhoneNumber, member.Street, member.City, member.State, member.Country, member.Status,
		member.MonthlySavings, metaDataJSON)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return model.Member{}, apierror.NewAPIError(apierror.ErrConflict, "Member already exists", err)
		}
		return model.Member{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create member", err)
	}

	return member, nil
}

func (d Datasource) GetMemberByID(id string) (*model.Member, error) {
	row := d.Conn.QueryRow(fmt.Sprintf(`SELECT %s FROM members WHERE member_id = $1`, memberSelectColumns), id)

	member, err := scanMemberRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Member with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve member", err)
	}

	return member, nil
}

func (d Datasource) GetAllMembers(limit, offset int) ([]model.Member, error) {
	rows, err := d.Conn.Query(fmt.Sprintf(`
		SELECT %s FROM members ORDER BY last_name, first_name LIMIT $1 OFFSET $2
	`, memberSelectColumns), limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve members", err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		member, err := scanMemberRow(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan member data", err)
		}
		members = append(members, *member)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over members", err)
	}

	return members, nil
}

func (d Datasource) UpdateMember(member *model.Member) error {
	metaDataJSON, err := json.Marshal(member.MetaData)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	result, err := d.Conn.Exec(`
		UPDATE members
		SET first_name = $2, last_name = $3, other_names = $4, gender = $5, email_address = $6, phone_number = $7,
			street = $8, city = $9, state = $10, country = $11, status = $12, monthly_savings = $13, meta_data = $14
		WHERE member_id = $1
	`, member.MemberID, member.FirstName, member.LastName, member.OtherNames, member.Gender, member.EmailAddress,
		member.PhoneNumber, member.Street, member.City, member.State, member.Country, member.Status,
		member.MonthlySavings, metaDataJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update member", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update member", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Member with ID '%s' not found", member.MemberID), nil)
	}

	return nil
}
