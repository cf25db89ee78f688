package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/coopledger/coopledger/model"
	"github.com/lib/pq"
)

func (d Datasource) CreateAccount(account model.Account) (model.Account, error) {
	if !account.Category.Valid() {
		return model.Account{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Account category must be one of asset, liability, equity, income, expense", account.Category)
	}

	metaDataJSON, err := json.Marshal(account.MetaData)
	if err != nil {
		return model.Account{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	account.AccountID = model.GenerateUUIDWithSuffix("acc")
	account.CreatedAt = time.Now()
	account.InitializeBalanceFields()

	_, err = d.Conn.Exec(`
		INSERT INTO accounts (account_id, code, name, category, description, debit_total, credit_total, balance, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, account.AccountID, account.Code, account.Name, account.Category, account.Description,
		account.DebitTotal.String(), account.CreditTotal.String(), account.Balance.String(), account.CreatedAt, metaDataJSON)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return model.Account{}, apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("Account with code %s already exists", account.Code), err)
			default:
				return model.Account{}, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return model.Account{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create account", err)
	}

	return account, nil
}

func scanAccountRow(row *sql.Row) (*model.Account, error) {
	account := model.Account{}
	var metaDataJSON []byte
	var debitTotal, creditTotal, balance string
	err := row.Scan(&account.AccountID, &account.Code, &account.Name, &account.Category, &account.Description,
		&debitTotal, &creditTotal, &balance, &account.Archived, &account.CreatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Account not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve account", err)
	}

	if account.DebitTotal, err = scanBigInt(debitTotal); err != nil {
		return nil, err
	}
	if account.CreditTotal, err = scanBigInt(creditTotal); err != nil {
		return nil, err
	}
	if account.Balance, err = scanBigInt(balance); err != nil {
		return nil, err
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &account.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	return &account, nil
}

const accountSelectColumns = `account_id, code, name, category, COALESCE(description, ''), debit_total, credit_total, balance, archived, created_at, meta_data`

func (d Datasource) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	cacheKey := fmt.Sprintf("account:%s", id)
	if d.Cache != nil {
		cached := model.Account{}
		if err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && cached.AccountID != "" {
			return &cached, nil
		}
	}

	row := d.Conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM accounts WHERE account_id = $1
	`, accountSelectColumns), id)

	account, err := scanAccountRow(row)
	if err != nil {
		return nil, err
	}

	if d.Cache != nil {
		// Best effort, a failed cache write never fails the read.
		_ = d.Cache.Set(ctx, cacheKey, account, time.Minute)
	}

	return account, nil
}

// GetAccountForPosting reads an account straight from the database, skipping
// the cache in both directions. Posting applies deltas to the totals it
// reads, so it must see the last committed values; a cached copy may have
// been repopulated by a read that scanned pre-commit totals.
func (d Datasource) GetAccountForPosting(ctx context.Context, id string) (*model.Account, error) {
	row := d.Conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM accounts WHERE account_id = $1
	`, accountSelectColumns), id)
	return scanAccountRow(row)
}

func (d Datasource) GetAccountByCode(ctx context.Context, code string) (*model.Account, error) {
	row := d.Conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM accounts WHERE code = $1
	`, accountSelectColumns), code)
	return scanAccountRow(row)
}

func (d Datasource) GetAllAccounts(filter model.AccountFilter, limit, offset int) ([]model.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM accounts WHERE archived = $1
	`, accountSelectColumns)
	args := []interface{}{filter.Archived}

	if filter.Category != "" {
		query += ` AND category = $2`
		args = append(args, filter.Category)
	}
	query += fmt.Sprintf(` ORDER BY code ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := d.Conn.Query(query, args...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve accounts", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		account := model.Account{}
		var metaDataJSON []byte
		var debitTotal, creditTotal, balance string
		err = rows.Scan(&account.AccountID, &account.Code, &account.Name, &account.Category, &account.Description,
			&debitTotal, &creditTotal, &balance, &account.Archived, &account.CreatedAt, &metaDataJSON)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan account data", err)
		}
		if account.DebitTotal, err = scanBigInt(debitTotal); err != nil {
			return nil, err
		}
		if account.CreditTotal, err = scanBigInt(creditTotal); err != nil {
			return nil, err
		}
		if account.Balance, err = scanBigInt(balance); err != nil {
			return nil, err
		}
		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &account.MetaData); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over accounts", err)
	}

	return accounts, nil
}

// ArchiveAccount marks an account archived. Archived accounts are rejected by
// transaction validation; their entry history stays queryable.
func (d Datasource) ArchiveAccount(ctx context.Context, id string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE accounts SET archived = TRUE WHERE account_id = $1
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to archive account", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to archive account", err)
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Account not found", id)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, fmt.Sprintf("account:%s", id))
	}
	return nil
}
