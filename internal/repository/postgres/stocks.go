package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

const (
	stockColumns   = `id, symbol, name, exchange, sector, industry, currency, last_price, last_updated, description, created_at, updated_at`
	holdingColumns = `id, account_id, stock_id, shares, average_cost, purchase_date, notes, created_at, updated_at`
	tradeColumns   = `id, account_id, stock_id, transaction_type, shares, price_per_share, total_amount, fees, date, notes, created_at`
)

func (r *Repository) CreateStock(ctx context.Context, s models.Stock) (models.Stock, error) {
	const query = `
		INSERT INTO stocks
		(symbol, name, exchange, sector, industry, currency, last_price, last_updated, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
		RETURNING ` + stockColumns
	var lastPrice interface{}
	if s.LastPrice != nil {
		lastPrice = *s.LastPrice
	}
	row := r.db.QueryRowContext(ctx, query,
		s.Symbol, s.Name, nullableString(s.Exchange), nullableString(s.Sector), nullableString(s.Industry),
		s.Currency, lastPrice, nullableTime(s.LastUpdated), nullableString(s.Description), s.CreatedAt)
	created, err := scanStock(row)
	if err != nil && isUniqueViolation(err) {
		return models.Stock{}, repository.ErrDuplicateSymbol
	}
	return created, err
}

func (r *Repository) GetStock(ctx context.Context, id int64) (models.Stock, error) {
	const query = `SELECT ` + stockColumns + ` FROM stocks WHERE id = $1`
	s, err := scanStock(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stock{}, repository.ErrNotFound
	}
	return s, err
}

func (r *Repository) GetStockBySymbol(ctx context.Context, symbol string) (models.Stock, error) {
	const query = `SELECT ` + stockColumns + ` FROM stocks WHERE symbol = $1`
	s, err := scanStock(r.db.QueryRowContext(ctx, query, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stock{}, repository.ErrNotFound
	}
	return s, err
}

func (r *Repository) ListStocks(ctx context.Context) ([]models.Stock, error) {
	const query = `SELECT ` + stockColumns + ` FROM stocks ORDER BY symbol ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := []models.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

func (r *Repository) UpdateStockPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stocks SET last_price = $2, last_updated = $3, updated_at = $3 WHERE id = $1`,
		id, price, at)
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

func (r *Repository) GetHolding(ctx context.Context, accountID, stockID int64) (models.Holding, error) {
	const query = `SELECT ` + holdingColumns + ` FROM holdings WHERE account_id = $1 AND stock_id = $2`
	h, err := scanHolding(r.db.QueryRowContext(ctx, query, accountID, stockID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Holding{}, repository.ErrNotFound
	}
	return h, err
}

func (r *Repository) ListHoldings(ctx context.Context, f repository.HoldingFilter) ([]models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE 1=1`
	args := []interface{}{}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if f.StockID != nil {
		args = append(args, *f.StockID)
		query += fmt.Sprintf(" AND stock_id = $%d", len(args))
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// RecordTrade inserts the stock transaction and applies the holding mutation
// in one database transaction, so a failed holding write rolls back the trade.
func (r *Repository) RecordTrade(ctx context.Context, t models.StockTransaction, mut repository.HoldingMutation) (models.StockTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.StockTransaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO stock_transactions
		(account_id, stock_id, transaction_type, shares, price_per_share, total_amount, fees, date, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING ` + tradeColumns
	row := tx.QueryRowContext(ctx, query,
		t.AccountID, t.StockID, string(t.Type), t.Shares, t.PricePerShare,
		t.TotalAmount, t.Fees, t.Date, nullableString(t.Notes), t.CreatedAt)
	created, err := scanTrade(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.StockTransaction{}, repository.ErrNotFound
		}
		return models.StockTransaction{}, err
	}

	if err := applyHoldingMutation(ctx, tx, mut); err != nil {
		return models.StockTransaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.StockTransaction{}, err
	}
	return created, nil
}

func (r *Repository) GetTrade(ctx context.Context, id int64) (models.StockTransaction, error) {
	const query = `SELECT ` + tradeColumns + ` FROM stock_transactions WHERE id = $1`
	t, err := scanTrade(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.StockTransaction{}, repository.ErrNotFound
	}
	return t, err
}

func (r *Repository) ListTrades(ctx context.Context, f repository.TradeFilter) ([]models.StockTransaction, error) {
	query := `SELECT ` + tradeColumns + ` FROM stock_transactions WHERE 1=1`
	args := []interface{}{}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if f.StockID != nil {
		args = append(args, *f.StockID)
		query += fmt.Sprintf(" AND stock_id = $%d", len(args))
	}
	if f.Type != nil {
		args = append(args, string(*f.Type))
		query += fmt.Sprintf(" AND transaction_type = $%d", len(args))
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

	trades := []models.StockTransaction{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// DeleteTrade removes the stock transaction and applies the reversing holding
// mutation in one database transaction.
func (r *Repository) DeleteTrade(ctx context.Context, id int64, mut repository.HoldingMutation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM stock_transactions WHERE id = $1`, id)
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

	if err := applyHoldingMutation(ctx, tx, mut); err != nil {
		return err
	}
	return tx.Commit()
}

func applyHoldingMutation(ctx context.Context, tx *sql.Tx, mut repository.HoldingMutation) error {
	switch mut.Op {
	case repository.HoldingNone:
		return nil
	case repository.HoldingUpsert:
		h := mut.Holding
		const query = `
			INSERT INTO holdings (account_id, stock_id, shares, average_cost, purchase_date, notes, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,now(),now())
			ON CONFLICT (account_id, stock_id) DO UPDATE
			SET shares = EXCLUDED.shares, average_cost = EXCLUDED.average_cost, updated_at = now()
		`
		_, err := tx.ExecContext(ctx, query,
			h.AccountID, h.StockID, h.Shares, h.AverageCost, nullableTime(h.PurchaseDate), nullableString(h.Notes))
		return err
	case repository.HoldingDelete:
		_, err := tx.ExecContext(ctx,
			`DELETE FROM holdings WHERE account_id = $1 AND stock_id = $2`,
			mut.Holding.AccountID, mut.Holding.StockID)
		return err
	}
	return nil
}

func scanStock(row rowScanner) (models.Stock, error) {
	var s models.Stock
	var exchange, sector, industry, description sql.NullString
	var lastPrice decimal.NullDecimal
	var lastUpdated sql.NullTime
	if err := row.Scan(&s.ID, &s.Symbol, &s.Name, &exchange, &sector, &industry, &s.Currency,
		&lastPrice, &lastUpdated, &description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return models.Stock{}, err
	}
	s.Exchange = exchange.String
	s.Sector = sector.String
	s.Industry = industry.String
	s.Description = description.String
	s.LastPrice = decimalPtr(lastPrice)
	s.LastUpdated = timePtr(lastUpdated)
	return s, nil
}

func scanHolding(row rowScanner) (models.Holding, error) {
	var h models.Holding
	var purchaseDate sql.NullTime
	var notes sql.NullString
	if err := row.Scan(&h.ID, &h.AccountID, &h.StockID, &h.Shares, &h.AverageCost,
		&purchaseDate, &notes, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return models.Holding{}, err
	}
	h.PurchaseDate = timePtr(purchaseDate)
	h.Notes = notes.String
	return h, nil
}

func scanTrade(row rowScanner) (models.StockTransaction, error) {
	var t models.StockTransaction
	var tradeType string
	var notes sql.NullString
	if err := row.Scan(&t.ID, &t.AccountID, &t.StockID, &tradeType, &t.Shares, &t.PricePerShare,
		&t.TotalAmount, &t.Fees, &t.Date, &notes, &t.CreatedAt); err != nil {
		return models.StockTransaction{}, err
	}
	t.Type = models.TradeType(tradeType)
	t.Notes = notes.String
	return t, nil
}
