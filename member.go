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

import "github.com/coopledger/coopledger/model"

// RegisterMember adds a member to the registry.
func (l *Coopledger) RegisterMember(member model.Member) (model.Member, error) {
	return l.datasource.CreateMember(member)
}

// GetMember retrieves a member by id.
func (l *Coopledger) GetMember(id string) (*model.Member, error) {
	return l.datasource.GetMemberByID(id)
}

// GetAllMembers lists members ordered by name.
func (l *Coopledger) GetAllMembers(limit, offset int) ([]model.Member, error) {
	return l.datasource.GetAllMembers(limit, offset)
}

// UpdateMember updates a member's details and status.
func (l *Coopledger) UpdateMember(member *model.Member) error {
	return l.datasource.UpdateMember(member)
}
