package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

// TransactionService records cash transactions and keeps account balances in
// step with the ledger: creating a transaction applies its signed amount to
// the account, deleting it applies the inverse.
type TransactionService struct {
	repo   repository.TransactionRepository
	now    func() time.Time
	logger *logrus.Entry
}

func NewTransactionService(repo repository.TransactionRepository, logger *logrus.Logger) *TransactionService {
	return &TransactionService{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.WithField("component", "transaction-service"),
	}
}

// CreateTransactionInput is the DTO consumed by CreateTransaction.
type CreateTransactionInput struct {
	AccountID   int64
	Amount      decimal.Decimal
	Type        models.TransactionType
	Category    string
	Description string
	Date        time.Time
	Payee       string
	Reference   string
	Tags        string
	IsRecurring bool
	Notes       string
}

func (s *TransactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (models.Transaction, error) {
	if input.Description == "" {
		return models.Transaction{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if input.Amount.IsZero() {
		return models.Transaction{}, fmt.Errorf("%w: amount cannot be zero", ErrValidation)
	}
	if !input.Type.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, input.Type)
	}
	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	category := input.Category
	if category == "" {
		category = "uncategorized"
	}

	txn := models.Transaction{
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    category,
		Description: input.Description,
		Date:        date,
		Payee:       input.Payee,
		Reference:   input.Reference,
		Tags:        input.Tags,
		IsRecurring: input.IsRecurring,
		Notes:       input.Notes,
		CreatedAt:   s.now(),
	}

	created, err := s.repo.CreateTransaction(ctx, txn, txn.Amount)
	if err != nil {
		return models.Transaction{}, err
	}
	s.logger.WithFields(logrus.Fields{
		"transactionId": created.ID,
		"accountId":     created.AccountID,
		"amount":        created.Amount.String(),
	}).Info("transaction created")
	return created, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (models.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// UpdateTransactionInput carries optional field updates; nil pointers leave
// the existing value untouched.
type UpdateTransactionInput struct {
	Amount      *decimal.Decimal
	Type        *models.TransactionType
	Category    *string
	Description *string
	Date        *time.Time
	Payee       *string
	Reference   *string
	Tags        *string
	IsRecurring *bool
	Notes       *string
}

// UpdateTransaction edits a transaction in place. When the amount changes the
// difference is applied to the account balance in the same unit of work, so
// the ledger and the balance stay consistent.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id int64, input UpdateTransactionInput) (models.Transaction, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	oldAmount := txn.Amount

	if input.Amount != nil {
		if input.Amount.IsZero() {
			return models.Transaction{}, fmt.Errorf("%w: amount cannot be zero", ErrValidation)
		}
		txn.Amount = *input.Amount
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return models.Transaction{}, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, *input.Type)
		}
		txn.Type = *input.Type
	}
	if input.Category != nil {
		txn.Category = *input.Category
	}
	if input.Description != nil {
		if *input.Description == "" {
			return models.Transaction{}, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		txn.Description = *input.Description
	}
	if input.Date != nil {
		txn.Date = *input.Date
	}
	if input.Payee != nil {
		txn.Payee = *input.Payee
	}
	if input.Reference != nil {
		txn.Reference = *input.Reference
	}
	if input.Tags != nil {
		txn.Tags = *input.Tags
	}
	if input.IsRecurring != nil {
		txn.IsRecurring = *input.IsRecurring
	}
	if input.Notes != nil {
		txn.Notes = *input.Notes
	}

	updated, err := s.repo.UpdateTransaction(ctx, txn, txn.Amount.Sub(oldAmount))
	if err != nil {
		return models.Transaction{}, err
	}
	s.logger.WithField("transactionId", updated.ID).Info("transaction updated")
	return updated, nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, f repository.TransactionFilter) ([]models.Transaction, error) {
	return s.repo.ListTransactions(ctx, f)
}

// DeleteTransaction removes the transaction and reverses its effect on the
// account balance.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id, txn.Amount.Neg()); err != nil {
		return err
	}
	s.logger.WithField("transactionId", id).Info("transaction deleted")
	return nil
}

// TransactionSummary aggregates the cash ledger over a filtered window.
type TransactionSummary struct {
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpenses     decimal.Decimal            `json:"totalExpenses"`
	NetIncome         decimal.Decimal            `json:"netIncome"`
	TransactionCounts map[string]int             `json:"transactionCounts"`
	CategorySpending  map[string]decimal.Decimal `json:"categorySpending"`
	TotalTransactions int                        `json:"totalTransactions"`
}

// Summary totals income (positive amounts) and expenses (negative amounts,
// reported as absolute values) over the filtered transactions, plus counts by
// type and spending by category.
func (s *TransactionService) Summary(ctx context.Context, f repository.TransactionFilter) (TransactionSummary, error) {
	f.Limit = 0
	transactions, err := s.repo.ListTransactions(ctx, f)
	if err != nil {
		return TransactionSummary{}, err
	}

	summary := TransactionSummary{
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
		NetIncome:         decimal.Zero,
		TransactionCounts: map[string]int{},
		CategorySpending:  map[string]decimal.Decimal{},
		TotalTransactions: len(transactions),
	}
	for _, t := range transactions {
		if t.Amount.Sign() > 0 {
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		} else {
			spent := t.Amount.Abs()
			summary.TotalExpenses = summary.TotalExpenses.Add(spent)
			summary.CategorySpending[t.Category] = summary.CategorySpending[t.Category].Add(spent)
		}
		summary.TransactionCounts[string(t.Type)]++
	}
	summary.NetIncome = summary.TotalIncome.Sub(summary.TotalExpenses)
	return summary, nil
}

// ImportCSV reads transactions from CSV and creates them against the account.
// Required columns are description, amount and date (YYYY-MM-DD, header names
// case-insensitive); category, payee, reference and notes are optional. The
// transaction type is derived from the amount's sign. Bad rows are skipped
// and reported; the rest import normally.
func (s *TransactionService) ImportCSV(ctx context.Context, accountID int64, r io.Reader) (int, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: cannot read CSV header: %v", ErrValidation, err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"description", "amount", "date"} {
		if _, ok := columns[required]; !ok {
			return 0, nil, fmt.Errorf("%w: CSV is missing the %q column", ErrValidation, required)
		}
	}
	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	imported := 0
	importErrors := []string{}
	for rowNum := 2; ; rowNum++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			importErrors = append(importErrors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		description := field(record, "description")
		amountStr := strings.NewReplacer("$", "", ",", "").Replace(field(record, "amount"))
		dateStr := field(record, "date")
		if description == "" || amountStr == "" || dateStr == "" {
			importErrors = append(importErrors, fmt.Sprintf("row %d: missing required fields (description, amount, date)", rowNum))
			continue
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			importErrors = append(importErrors, fmt.Sprintf("row %d: invalid amount %q", rowNum, field(record, "amount")))
			continue
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			importErrors = append(importErrors, fmt.Sprintf("row %d: invalid date %q", rowNum, dateStr))
			continue
		}

		txnType := models.TxnExpense
		if amount.Sign() > 0 {
			txnType = models.TxnIncome
		}

		if _, err := s.CreateTransaction(ctx, CreateTransactionInput{
			AccountID:   accountID,
			Amount:      amount,
			Type:        txnType,
			Category:    field(record, "category"),
			Description: description,
			Date:        date,
			Payee:       field(record, "payee"),
			Reference:   field(record, "reference"),
			Notes:       field(record, "notes"),
		}); err != nil {
			importErrors = append(importErrors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		imported++
	}

	s.logger.WithFields(logrus.Fields{
		"accountId": accountID,
		"imported":  imported,
		"failed":    len(importErrors),
	}).Info("CSV import finished")
	return imported, importErrors, nil
}

// ExportCSV streams the filtered transactions as CSV.
func (s *TransactionService) ExportCSV(ctx context.Context, w io.Writer, f repository.TransactionFilter) error {
	transactions, err := s.repo.ListTransactions(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "date", "account_id", "type", "category", "description", "amount", "payee", "reference", "tags", "recurring", "notes"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range transactions {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.Format("2006-01-02"),
			strconv.FormatInt(t.AccountID, 10),
			string(t.Type),
			t.Category,
			t.Description,
			t.Amount.StringFixed(2),
			t.Payee,
			t.Reference,
			t.Tags,
			strconv.FormatBool(t.IsRecurring),
			t.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
