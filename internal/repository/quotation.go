package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/quotation-tracker/constants"
	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
)

type QuotationRepository interface {
	Save(ctx context.Context, q *entity.Quotation) error
	Get(ctx context.Context, id string) (*entity.Quotation, error)
	List(ctx context.Context) ([]*entity.Quotation, error)
}

type quotationRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewQuotationRepository(db *DB, logger *slog.Logger) QuotationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &quotationRepository{db: db, logger: logger}
}

const upsertQuotation = `INSERT INTO quotations (id, number, status, line_items, supplier_sheets, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	number = excluded.number,
	status = excluded.status,
	line_items = excluded.line_items,
	supplier_sheets = excluded.supplier_sheets,
	updated_at = excluded.updated_at`

const selectQuotation = `SELECT id, number, status, line_items, supplier_sheets, created_at, updated_at FROM quotations`

// Save inserts or replaces the whole quotation.
func (r *quotationRepository) Save(ctx context.Context, q *entity.Quotation) error {
	items, err := json.Marshal(q.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	sheets, err := json.Marshal(q.SupplierSheets)
	if err != nil {
		return fmt.Errorf("marshal supplier sheets: %w", err)
	}

	_, err = r.db.SQL.ExecContext(ctx, r.db.rebind(upsertQuotation),
		q.ID, q.Number, string(q.Status), string(items), string(sheets),
		formatTime(q.CreatedAt), formatTime(q.UpdatedAt),
	)
	if err != nil {
		r.logger.Error("failed to save quotation", "quotation_id", q.ID, "error", err)
		return fmt.Errorf("%w: save quotation %s: %w", common.ErrDatabase, q.ID, err)
	}
	r.logger.Debug("quotation saved", "quotation_id", q.ID, "status", q.Status)
	return nil
}

func (r *quotationRepository) Get(ctx context.Context, id string) (*entity.Quotation, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(selectQuotation+` WHERE id = ?`), id)
	q, err := scanQuotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quotation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get quotation %s: %w", common.ErrDatabase, id, err)
	}
	return q, nil
}

// List returns every quotation, oldest first.
func (r *quotationRepository) List(ctx context.Context) ([]*entity.Quotation, error) {
	rows, err := r.db.SQL.QueryContext(ctx, selectQuotation+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list quotations: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list quotations: %w", common.ErrDatabase, err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list quotations: %w", common.ErrDatabase, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuotation(s scanner) (*entity.Quotation, error) {
	var (
		q                entity.Quotation
		status           string
		items, sheets    string
		created, updated string
	)
	if err := s.Scan(&q.ID, &q.Number, &status, &items, &sheets, &created, &updated); err != nil {
		return nil, err
	}
	q.Status = constants.QuotationStatus(status)
	if err := json.Unmarshal([]byte(items), &q.LineItems); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	if err := json.Unmarshal([]byte(sheets), &q.SupplierSheets); err != nil {
		return nil, fmt.Errorf("decode supplier sheets: %w", err)
	}
	var err error
	if q.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if q.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	return &q, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
