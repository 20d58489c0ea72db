package billing

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdesk/ledgerdesk/internal/ledger"
	"github.com/ledgerdesk/ledgerdesk/internal/platform/db"
)

// RepositoryPort defines the data access the billing service needs. The
// surrounding application owns persistence; the ledger core only ever sees
// the materialized documents this port returns.
type RepositoryPort interface {
	ListDocuments(ctx context.Context) ([]ledger.Document, error)
	CustomerNames(ctx context.Context) (map[string]string, error)
	RecordPayment(ctx context.Context, invoiceID string, input PaymentInput) error
}

// Repository provides PostgreSQL backed document access.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const isoDate = "2006-01-02"

// ListDocuments loads every invoice/credit-note document with its lines and
// payment sub-records, ordered by issue date descending.
func (r *Repository) ListDocuments(ctx context.Context) ([]ledger.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, reference, document_type, issue_date, currency, customer_id, status, total_net, total_tax, total_gross
FROM invoices ORDER BY issue_date DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []ledger.Document
	index := make(map[string]int)
	for rows.Next() {
		var (
			doc       ledger.Document
			issueDate *time.Time
		)
		if err := rows.Scan(&doc.ID, &doc.Reference, &doc.DocumentType, &issueDate, &doc.Currency, &doc.CustomerID, &doc.Status, &doc.Totals.Net, &doc.Totals.Tax, &doc.Totals.Gross); err != nil {
			return nil, err
		}
		if issueDate != nil {
			doc.IssueDate = issueDate.Format(isoDate)
		}
		index[doc.ID] = len(docs)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachLines(ctx, docs, index); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, docs, index); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Repository) attachLines(ctx context.Context, docs []ledger.Document, index map[string]int) error {
	rows, err := r.pool.Query(ctx, `SELECT invoice_id, sku, description, line_date, quantity, unit_price, tax_rate, iso_week
FROM invoice_lines ORDER BY invoice_id, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			invoiceID string
			line      ledger.LineItem
			lineDate  *time.Time
		)
		if err := rows.Scan(&invoiceID, &line.SKU, &line.Description, &lineDate, &line.Quantity, &line.UnitPrice, &line.TaxRate, &line.ISOWeek); err != nil {
			return err
		}
		if lineDate != nil {
			line.LineDate = lineDate.Format(isoDate)
		}
		if idx, ok := index[invoiceID]; ok {
			docs[idx].Lines = append(docs[idx].Lines, line)
		}
	}
	return rows.Err()
}

func (r *Repository) attachPayments(ctx context.Context, docs []ledger.Document, index map[string]int) error {
	rows, err := r.pool.Query(ctx, `SELECT invoice_id, amount, paid_at, method, note
FROM invoice_payments ORDER BY invoice_id, paid_at, id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			invoiceID string
			payment   ledger.Payment
			paidAt    *time.Time
		)
		if err := rows.Scan(&invoiceID, &payment.Amount, &paidAt, &payment.Method, &payment.Note); err != nil {
			return err
		}
		if paidAt != nil {
			payment.Date = paidAt.Format(isoDate)
		}
		if idx, ok := index[invoiceID]; ok {
			docs[idx].Payments = append(docs[idx].Payments, payment)
		}
	}
	return rows.Err()
}

// CustomerNames returns the id to display-name directory for counterparty
// resolution.
func (r *Repository) CustomerNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// RecordPayment appends a payment sub-record to an invoice. The payment
// reference is unique per invoice so retries cannot double-post cash.
func (r *Repository) RecordPayment(ctx context.Context, invoiceID string, input PaymentInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, invoiceID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrInvoiceNotFound
		}
		paidAt := time.Now().UTC()
		if input.Date != "" {
			if parsed, err := time.Parse(isoDate, input.Date); err == nil {
				paidAt = parsed
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO invoice_payments (invoice_id, amount, paid_at, method, note, reference)
VALUES ($1, $2, $3, $4, $5, $6)`, invoiceID, input.Amount, paidAt, input.Method, input.Note, input.Reference)
		if err != nil {
			if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_invoice_payment_reference" {
				return ErrDuplicatePayment
			}
			return err
		}
		return nil
	})
}
