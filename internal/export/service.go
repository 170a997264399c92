package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
	"github.com/joseph-ayodele/quotation-tracker/internal/quotation"
)

const (
	SheetComparison = "Comparativo"
	SheetSummary    = "Resumo"
)

// Service produces XLSX bytes for quotation exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportComparisonXLSX returns a workbook comparing every supplier's prices
// side by side, plus a summary sheet with status and totals.
func (s *Service) ExportComparisonXLSX(q *entity.Quotation) ([]byte, error) {
	start := time.Now()
	sum := quotation.Summarize(q)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetComparison); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(SheetComparison)
	f.SetActiveSheet(activeIndex)

	if err := writeComparison(f, q, sum); err != nil {
		return nil, fmt.Errorf("write %s: %w", SheetComparison, err)
	}
	if err := writeSummary(f, q, sum); err != nil {
		return nil, fmt.Errorf("write %s: %w", SheetSummary, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"quotation_id", q.ID,
		"items", len(q.LineItems),
		"suppliers", len(q.SupplierSheets),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error of a run of cell writes.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) width(from, to string, v float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, from, to, v)
}

func writeComparison(f *excelize.File, q *entity.Quotation, sum quotation.Summary) error {
	w := &sheetWriter{f: f, sheet: SheetComparison}
	write := w.set

	headers := []string{"Item", "Descrição", "Qtd", "Un"}
	for _, sh := range q.SupplierSheets {
		headers = append(headers, supplierLabel(sh))
	}
	bestCol := len(headers) + 1
	headers = append(headers, "Melhor preço", "Fornecedor")
	for i, h := range headers {
		write(i+1, 1, h)
	}

	names := make(map[string]string, len(q.SupplierSheets))
	for _, sh := range q.SupplierSheets {
		names[sh.SupplierID] = supplierLabel(sh)
	}

	row := 2
	for _, it := range q.LineItems {
		write(1, row, it.ID)
		write(2, row, truncate(it.Description, 140))
		write(3, row, it.Quantity)
		write(4, row, it.Unit)
		for i, sh := range q.SupplierSheets {
			if p := sh.PriceFor(it.ID); sh.Responded && p > 0 {
				write(5+i, row, p)
			}
		}
		if bid, ok := sum.ItemWinners[it.ID]; ok {
			write(bestCol, row, bid.UnitPrice)
			write(bestCol+1, row, names[bid.SupplierID])
		}
		row++
	}

	write(1, row, "Total")
	for i, sh := range q.SupplierSheets {
		if sh.Responded {
			write(5+i, row, sh.Total)
		}
	}
	row++

	write(1, row, "Condição de pagamento")
	for i, sh := range q.SupplierSheets {
		write(5+i, row, sh.PaymentTerms)
	}
	row++

	write(1, row, "Prazo de entrega")
	for i, sh := range q.SupplierSheets {
		write(5+i, row, sh.DeliveryTerm)
	}
	row++

	write(1, row, "Vencedor")
	if sum.Winner != nil {
		write(2, row, supplierLabel(*sum.Winner))
	}

	w.width("A", "A", 24)
	w.width("B", "B", 40)
	w.width("C", "D", 8)
	if w.err != nil {
		return w.err
	}
	last, err := excelize.ColumnNumberToName(bestCol + 1)
	if err != nil {
		return err
	}
	w.width("E", last, 18)
	return w.err
}

func writeSummary(f *excelize.File, q *entity.Quotation, sum quotation.Summary) error {
	w := &sheetWriter{f: f, sheet: SheetSummary}
	write := w.set

	write(1, 1, "Cotação")
	write(2, 1, q.Number)
	write(1, 2, "Status")
	write(2, 2, string(sum.Status))

	for i, h := range []string{"Fornecedor", "Respondeu", "Total", "Vencedor"} {
		write(i+1, 4, h)
	}
	row := 5
	for _, sh := range q.SupplierSheets {
		write(1, row, supplierLabel(sh))
		write(2, row, yesNo(sh.Responded))
		write(3, row, sh.Total)
		write(4, row, yesNo(sh.IsWinner))
		row++
	}

	w.width("A", "A", 28)
	w.width("B", "D", 14)
	return w.err
}

func supplierLabel(s entity.SupplierSheet) string {
	if s.SupplierName != "" {
		return s.SupplierName
	}
	return s.SupplierID
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
