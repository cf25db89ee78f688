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
	"strings"

	"github.com/coopledger/coopledger/internal/apierror"
)

// getEntityTypeFromID determines the entity type from the ID prefix.
func getEntityTypeFromID(id string) (string, error) {
	switch {
	case strings.HasPrefix(id, "txn_"):
		return "transactions", nil
	case strings.HasPrefix(id, "acc_"):
		return "accounts", nil
	case strings.HasPrefix(id, "mem_"):
		return "members", nil
	case strings.HasPrefix(id, "sav_"):
		return "savings_accounts", nil
	case strings.HasPrefix(id, "lon_"):
		return "loans", nil
	default:
		return "", apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("invalid entity ID format: %s", id), id)
	}
}

// UpdateMetadata merges new metadata into the entity identified by its
// prefixed ID. Existing keys are overwritten, keys not named in the update
// are kept. The merged map is returned.
func (l *Coopledger) UpdateMetadata(ctx context.Context, entityID string, newMetadata map[string]interface{}) (map[string]interface{}, error) {
	entityType, err := getEntityTypeFromID(entityID)
	if err != nil {
		return nil, err
	}

	current, err := l.currentMetadata(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	merged := mergeMetadata(current, newMetadata)
	if err := l.updateEntityMetadata(ctx, entityType, entityID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// currentMetadata loads the entity and returns its stored metadata.
func (l *Coopledger) currentMetadata(ctx context.Context, entityType, entityID string) (map[string]interface{}, error) {
	switch entityType {
	case "transactions":
		transaction, err := l.datasource.GetTransaction(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return transaction.MetaData, nil

	case "accounts":
		account, err := l.datasource.GetAccountByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		return account.MetaData, nil

	case "members":
		member, err := l.datasource.GetMemberByID(entityID)
		if err != nil {
			return nil, err
		}
		return member.MetaData, nil

	case "savings_accounts":
		savings, err := l.datasource.GetSavingsAccountByID(entityID)
		if err != nil {
			return nil, err
		}
		return savings.MetaData, nil

	case "loans":
		loan, err := l.datasource.GetLoanByID(entityID)
		if err != nil {
			return nil, err
		}
		return loan.MetaData, nil

	default:
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("unsupported entity type: %s", entityType), entityType)
	}
}

// mergeMetadata merges new metadata into the existing map. A nil current
// map is initialized first.
func mergeMetadata(current, update map[string]interface{}) map[string]interface{} {
	if current == nil {
		current = make(map[string]interface{})
	}

	for k, v := range update {
		current[k] = v
	}

	return current
}

// updateEntityMetadata routes the update to the datasource method for the
// entity type.
func (l *Coopledger) updateEntityMetadata(ctx context.Context, entityType, entityID string, metadata map[string]interface{}) error {
	switch entityType {
	case "transactions":
		return l.datasource.UpdateTransactionMetadata(ctx, entityID, metadata)

	case "accounts":
		return l.datasource.UpdateAccountMetadata(ctx, entityID, metadata)

	case "members":
		return l.datasource.UpdateMemberMetadata(ctx, entityID, metadata)

	case "savings_accounts":
		return l.datasource.UpdateSavingsMetadata(ctx, entityID, metadata)

	case "loans":
		return l.datasource.UpdateLoanMetadata(ctx, entityID, metadata)

	default:
		return apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("unsupported entity type: %s", entityType), entityType)
	}
}
