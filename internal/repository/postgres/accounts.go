package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

const accountColumns = `id, name, account_type, balance, currency, description, institution, account_number, is_active, created_at, updated_at`

func (r *Repository) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	const query = `
		INSERT INTO accounts
		(name, account_type, balance, currency, description, institution, account_number, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
		RETURNING ` + accountColumns
	row := r.db.QueryRowContext(ctx, query,
		a.Name, string(a.Type), a.Balance, a.Currency, nullableString(a.Description),
		nullableString(a.Institution), nullableString(a.Number), a.IsActive, a.CreatedAt)
	return scanAccount(row)
}

func (r *Repository) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, repository.ErrNotFound
	}
	return a, err
}

func (r *Repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	const query = `
		UPDATE accounts
		SET name=$2, account_type=$3, balance=$4, currency=$5, description=$6,
		    institution=$7, account_number=$8, is_active=$9, updated_at=$10
		WHERE id=$1
		RETURNING ` + accountColumns
	row := r.db.QueryRowContext(ctx, query,
		a.ID, a.Name, string(a.Type), a.Balance, a.Currency, nullableString(a.Description),
		nullableString(a.Institution), nullableString(a.Number), a.IsActive, a.UpdatedAt)
	updated, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, repository.ErrNotFound
	}
	return updated, err
}

func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	var accountType string
	var description, institution, number sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &accountType, &a.Balance, &a.Currency,
		&description, &institution, &number, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return models.Account{}, err
	}
	a.Type = models.AccountType(accountType)
	a.Description = description.String
	a.Institution = institution.String
	a.Number = number.String
	return a, nil
}
