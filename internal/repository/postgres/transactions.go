package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

const transactionColumns = `id, account_id, amount, transaction_type, category, description, date, payee, reference, tags, is_recurring, notes, created_at`

// CreateTransaction inserts the transaction and applies the balance delta to
// the owning account inside one database transaction.
func (r *Repository) CreateTransaction(ctx context.Context, t models.Transaction, balanceDelta decimal.Decimal) (models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO transactions
		(account_id, amount, transaction_type, category, description, date, payee, reference, tags, is_recurring, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING ` + transactionColumns
	row := tx.QueryRowContext(ctx, query,
		t.AccountID, t.Amount, string(t.Type), t.Category, t.Description, t.Date,
		nullableString(t.Payee), nullableString(t.Reference), nullableString(t.Tags),
		t.IsRecurring, nullableString(t.Notes), t.CreatedAt)
	created, err := scanTransaction(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Transaction{}, repository.ErrNotFound
		}
		return models.Transaction{}, err
	}

	if err := adjustBalance(ctx, tx, t.AccountID, balanceDelta); err != nil {
		return models.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Transaction{}, err
	}
	return created, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, repository.ErrNotFound
	}
	return t, err
}

func (r *Repository) ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []interface{}{}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if f.Type != nil {
		args = append(args, string(*f.Type))
		query += fmt.Sprintf(" AND transaction_type = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC, created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction rewrites the transaction's mutable fields and applies the
// balance delta to the owning account inside one database transaction.
func (r *Repository) UpdateTransaction(ctx context.Context, t models.Transaction, balanceDelta decimal.Decimal) (models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		UPDATE transactions
		SET amount = $2, transaction_type = $3, category = $4, description = $5, date = $6,
		    payee = $7, reference = $8, tags = $9, is_recurring = $10, notes = $11
		WHERE id = $1
		RETURNING ` + transactionColumns
	row := tx.QueryRowContext(ctx, query,
		t.ID, t.Amount, string(t.Type), t.Category, t.Description, t.Date,
		nullableString(t.Payee), nullableString(t.Reference), nullableString(t.Tags),
		t.IsRecurring, nullableString(t.Notes))
	updated, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}

	if err := adjustBalance(ctx, tx, updated.AccountID, balanceDelta); err != nil {
		return models.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Transaction{}, err
	}
	return updated, nil
}

// DeleteTransaction removes the transaction and applies the reversing balance
// delta to the owning account inside one database transaction.
func (r *Repository) DeleteTransaction(ctx context.Context, id int64, balanceDelta decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var accountID int64
	err = tx.QueryRowContext(ctx, `DELETE FROM transactions WHERE id = $1 RETURNING account_id`, id).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := adjustBalance(ctx, tx, accountID, balanceDelta); err != nil {
		return err
	}
	return tx.Commit()
}

func adjustBalance(ctx context.Context, tx *sql.Tx, accountID int64, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`,
		accountID, delta)
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

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	var txnType string
	var payee, reference, tags, notes sql.NullString
	if err := row.Scan(&t.ID, &t.AccountID, &t.Amount, &txnType, &t.Category, &t.Description,
		&t.Date, &payee, &reference, &tags, &t.IsRecurring, &notes, &t.CreatedAt); err != nil {
		return models.Transaction{}, err
	}
	t.Type = models.TransactionType(txnType)
	t.Payee = payee.String
	t.Reference = reference.String
	t.Tags = tags.String
	t.Notes = notes.String
	return t, nil
}
