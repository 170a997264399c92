package quotation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/quotation-tracker/constants"
	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
)

// Repository persists whole quotations. Get returns an error wrapping
// common.ErrNotFound for unknown ids.
type Repository interface {
	Save(ctx context.Context, q *entity.Quotation) error
	Get(ctx context.Context, id string) (*entity.Quotation, error)
}

// Parser matches line items against a supplier document.
type Parser interface {
	Parse(ctx context.Context, document []byte, items []entity.LineItem) (entity.DocumentParseResult, error)
}

// ImportOutcome reports what a document import found and whether it changed
// the quotation.
type ImportOutcome struct {
	Result    entity.DocumentParseResult
	Quotation *entity.Quotation
	Applied   bool
}

// Service owns the quotation lifecycle. Writes to one quotation are
// serialized; parsing runs outside the lock.
type Service struct {
	repo   Repository
	parser Parser
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*quotationLock
}

func NewService(repo Repository, parser Parser, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		parser: parser,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*quotationLock),
	}
}

// New builds a not-started quotation with one empty sheet per supplier.
func New(req Request, now time.Time) (*entity.Quotation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q := &entity.Quotation{
		ID:             uuid.NewString(),
		Number:         req.Number,
		LineItems:      append([]entity.LineItem(nil), req.Items...),
		SupplierSheets: make([]entity.SupplierSheet, 0, len(req.Suppliers)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, s := range req.Suppliers {
		sheet := entity.SupplierSheet{SupplierID: s.ID, SupplierName: s.Name}
		sheet.ItemPrices = alignPrices(q.LineItems, nil)
		q.SupplierSheets = append(q.SupplierSheets, sheet)
	}
	q.Status = RecomputeStatus(q.SupplierSheets)
	return q, nil
}

// Create opens and stores a quotation for req.
func (s *Service) Create(ctx context.Context, req Request) (*entity.Quotation, error) {
	q, err := New(req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, common.WrapError(err, "save quotation")
	}
	s.logger.Info("quotation created",
		"request_id", common.RequestIDFromContext(ctx),
		"quotation_id", q.ID,
		"items", len(q.LineItems),
		"suppliers", len(q.SupplierSheets),
	)
	return q, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Quotation, error) {
	return s.repo.Get(ctx, id)
}

// ImportDocument parses a supplier's quote document and folds the matched
// prices and terms into that supplier's sheet. A decode failure or a document
// with no text leaves the quotation unchanged.
func (s *Service) ImportDocument(ctx context.Context, quotationID, supplierID string, document []byte) (ImportOutcome, error) {
	log := s.logger.With(
		"request_id", common.RequestIDFromContext(ctx),
		"quotation_id", quotationID,
		"supplier_id", supplierID,
	)

	q, err := s.repo.Get(ctx, quotationID)
	if err != nil {
		return ImportOutcome{}, err
	}
	if q.Sheet(supplierID) < 0 {
		return ImportOutcome{}, fmt.Errorf("supplier %q in quotation %s: %w", supplierID, quotationID, common.ErrNotFound)
	}

	res, err := s.parser.Parse(ctx, document, q.LineItems)
	if err != nil {
		log.Warn("document import failed", "error", err)
		return ImportOutcome{}, err
	}
	out := ImportOutcome{Result: res, Quotation: q}
	if !res.TextExtracted {
		log.Warn("document has no extractable text")
		return out, nil
	}
	if res.MatchedCount() == 0 && res.PaymentTerms == "" && res.DeliveryTerm == "" {
		log.Info("nothing recognised in document", "items", len(res.PerItem))
		return out, nil
	}

	updated, err := s.update(ctx, quotationID, func(cur *entity.Quotation) (*entity.Quotation, error) {
		idx := cur.Sheet(supplierID)
		if idx < 0 {
			return nil, fmt.Errorf("supplier %q in quotation %s: %w", supplierID, quotationID, common.ErrNotFound)
		}
		sheet := ApplyParseResult(cur.SupplierSheets[idx], res)
		return SaveSheet(cur, supplierID, sheet.ItemPrices,
			WithTerms(sheet.PaymentTerms, sheet.DeliveryTerm),
			WithClock(s.now),
		)
	})
	if err != nil {
		return out, err
	}

	out.Quotation = updated
	out.Applied = true
	log.Info("document imported",
		"matched", res.MatchedCount(),
		"items", len(res.PerItem),
		"status", updated.Status,
	)
	return out, nil
}

// SaveManual stores prices typed in by the user for a supplier.
func (s *Service) SaveManual(ctx context.Context, quotationID, supplierID string, prices []entity.ItemPrice, opts ...SaveOption) (*entity.Quotation, error) {
	opts = append([]SaveOption{WithClock(s.now)}, opts...)
	updated, err := s.update(ctx, quotationID, func(cur *entity.Quotation) (*entity.Quotation, error) {
		return SaveSheet(cur, supplierID, prices, opts...)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("supplier sheet saved",
		"request_id", common.RequestIDFromContext(ctx),
		"quotation_id", quotationID,
		"supplier_id", supplierID,
		"status", updated.Status,
	)
	return updated, nil
}

// Summary is the comparison view of a quotation.
type Summary struct {
	Status      constants.QuotationStatus
	Winner      *entity.SupplierSheet
	ItemWinners map[string]ItemBid
}

// Summarize derives the overall and per-item winners.
func Summarize(q *entity.Quotation) Summary {
	sum := Summary{Status: q.Status, ItemWinners: make(map[string]ItemBid, len(q.LineItems))}
	if w, ok := OverallWinner(q); ok {
		sum.Winner = &w
	}
	for _, it := range q.LineItems {
		if bid, ok := ItemWinner(q, it.ID); ok {
			sum.ItemWinners[it.ID] = bid
		}
	}
	return sum
}

func (s *Service) update(ctx context.Context, id string, fn func(*entity.Quotation) (*entity.Quotation, error)) (*entity.Quotation, error) {
	l := s.acquire(id)
	defer s.release(id, l)

	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, common.WrapError(err, "load quotation")
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, common.WrapError(err, "save quotation")
	}
	return next, nil
}

// quotationLock serializes writers of one quotation. refs counts holders and
// waiters so the entry can be dropped once nobody needs it.
type quotationLock struct {
	mu   sync.Mutex
	refs int
}

func (s *Service) acquire(id string) *quotationLock {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &quotationLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return l
}

func (s *Service) release(id string, l *quotationLock) {
	l.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}
