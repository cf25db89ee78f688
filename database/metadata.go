package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coopledger/coopledger/internal/apierror"
)

// updateMetadataColumn replaces the meta_data column of a single row. The
// table and id column are fixed by the callers, never caller input.
func (d Datasource) updateMetadataColumn(ctx context.Context, table, idColumn, id string, metadata map[string]interface{}) error {
	metaDataJSON, err := json.Marshal(metadata)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	result, err := d.Conn.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET meta_data = $2 WHERE %s = $1
	`, table, idColumn), id, metaDataJSON)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update metadata", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update metadata", err)
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Entity with ID '%s' not found", id), nil)
	}
	return nil
}

func (d Datasource) UpdateTransactionMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	return d.updateMetadataColumn(ctx, "transactions", "transaction_id", id, metadata)
}

func (d Datasource) UpdateAccountMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	if err := d.updateMetadataColumn(ctx, "accounts", "account_id", id, metadata); err != nil {
		return err
	}
	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, fmt.Sprintf("account:%s", id))
	}
	return nil
}

func (d Datasource) UpdateMemberMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	return d.updateMetadataColumn(ctx, "members", "member_id", id, metadata)
}

func (d Datasource) UpdateSavingsMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	return d.updateMetadataColumn(ctx, "savings_accounts", "savings_id", id, metadata)
}

func (d Datasource) UpdateLoanMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	return d.updateMetadataColumn(ctx, "loans", "loan_id", id, metadata)
}
