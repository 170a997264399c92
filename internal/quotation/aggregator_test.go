package quotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/quotation-tracker/constants"
	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestQuotation(t *testing.T, suppliers ...string) *entity.Quotation {
	t.Helper()
	req := Request{
		Number: "Q-001",
		Items: []entity.LineItem{
			{ID: "cimento", Description: "Cimento CP-II 50kg", Quantity: 10, Unit: "sc"},
			{ID: "areia", Description: "Areia média", Quantity: 3, Unit: "m3"},
		},
	}
	for _, s := range suppliers {
		req.Suppliers = append(req.Suppliers, Supplier{ID: s, Name: "Fornecedor " + s})
	}
	q, err := New(req, fixedNow)
	require.NoError(t, err)
	return q
}

func TestNew_EmptySheets(t *testing.T) {
	q := newTestQuotation(t, "a", "b")

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, constants.StatusNotStarted, q.Status)
	require.Len(t, q.SupplierSheets, 2)
	for _, s := range q.SupplierSheets {
		assert.False(t, s.Responded)
		assert.False(t, s.IsWinner)
		assert.Zero(t, s.Total)
		require.Len(t, s.ItemPrices, 2)
		assert.Equal(t, "cimento", s.ItemPrices[0].LineItemID)
		assert.Equal(t, "areia", s.ItemPrices[1].LineItemID)
	}
}

func TestSaveSheet_StatusTransitions(t *testing.T) {
	q := newTestQuotation(t, "a", "b", "c")
	require.Equal(t, constants.StatusNotStarted, q.Status)

	prices := []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: 30}}

	q, err := SaveSheet(q, "a", prices, WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPartial, q.Status)

	q, err = SaveSheet(q, "b", prices, WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPartial, q.Status)

	q, err = SaveSheet(q, "c", prices, WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, constants.StatusComplete, q.Status)
	assert.Equal(t, fixedNow, q.UpdatedAt)
}

func TestSaveSheet_TotalAndWinner(t *testing.T) {
	q := newTestQuotation(t, "a", "b")

	q, err := SaveSheet(q, "a", []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: 32.50}}, WithClock(clock))
	require.NoError(t, err)

	a := q.SupplierSheets[0]
	assert.Equal(t, 325.00, a.Total)
	assert.True(t, a.Responded)
	require.NotNil(t, a.RespondedAt)
	assert.Equal(t, fixedNow, *a.RespondedAt)
	assert.True(t, a.IsWinner)
	assert.False(t, q.SupplierSheets[1].IsWinner)

	q, err = SaveSheet(q, "b", []entity.ItemPrice{
		{LineItemID: "cimento", UnitPrice: 31.90},
		{LineItemID: "areia", UnitPrice: 0.1},
	}, WithClock(clock))
	require.NoError(t, err)

	b := q.SupplierSheets[1]
	assert.InDelta(t, 319.30, b.Total, 1e-9)
	assert.True(t, b.IsWinner)
	assert.False(t, q.SupplierSheets[0].IsWinner)

	w, ok := OverallWinner(q)
	require.True(t, ok)
	assert.Equal(t, "b", w.SupplierID)
}

func TestSaveSheet_TieKeepsFirstSheet(t *testing.T) {
	q := newTestQuotation(t, "a", "b")
	prices := []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: 20}}

	q, err := SaveSheet(q, "b", prices, WithClock(clock))
	require.NoError(t, err)
	q, err = SaveSheet(q, "a", prices, WithClock(clock))
	require.NoError(t, err)

	assert.True(t, q.SupplierSheets[0].IsWinner)
	assert.False(t, q.SupplierSheets[1].IsWinner)
}

func TestSaveSheet_ZeroTotalNeverWins(t *testing.T) {
	q := newTestQuotation(t, "a")

	q, err := SaveSheet(q, "a", nil, WithClock(clock))
	require.NoError(t, err)

	assert.True(t, q.SupplierSheets[0].Responded)
	assert.False(t, q.SupplierSheets[0].IsWinner)
	_, ok := OverallWinner(q)
	assert.False(t, ok)
	assert.Equal(t, constants.StatusComplete, q.Status)
}

func TestSaveSheet_DoesNotMutateInput(t *testing.T) {
	q := newTestQuotation(t, "a")

	out, err := SaveSheet(q, "a", []entity.ItemPrice{{LineItemID: "areia", UnitPrice: 90}},
		WithTerms("30 dias", "imediato"), WithClock(clock))
	require.NoError(t, err)

	assert.False(t, q.SupplierSheets[0].Responded)
	assert.Zero(t, q.SupplierSheets[0].PriceFor("areia"))
	assert.Empty(t, q.SupplierSheets[0].PaymentTerms)
	assert.Equal(t, constants.StatusNotStarted, q.Status)

	assert.Equal(t, 90.0, out.SupplierSheets[0].PriceFor("areia"))
	assert.Equal(t, "30 dias", out.SupplierSheets[0].PaymentTerms)
	assert.Equal(t, "imediato", out.SupplierSheets[0].DeliveryTerm)
}

func TestSaveSheet_Errors(t *testing.T) {
	q := newTestQuotation(t, "a")

	tests := []struct {
		name     string
		supplier string
		prices   []entity.ItemPrice
		want     error
	}{
		{"unknown supplier", "zzz", nil, common.ErrNotFound},
		{"negative price", "a", []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: -1}}, common.ErrValidation},
		{"unknown item", "a", []entity.ItemPrice{{LineItemID: "brita", UnitPrice: 10}}, common.ErrValidation},
		{"duplicate item", "a", []entity.ItemPrice{{LineItemID: "areia", UnitPrice: 1}, {LineItemID: "areia", UnitPrice: 2}}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SaveSheet(q, tt.supplier, tt.prices)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, out)
		})
	}
}

func TestApplyParseResult_KeepsUnmatchedPrices(t *testing.T) {
	sheet := entity.SupplierSheet{
		SupplierID: "a",
		ItemPrices: []entity.ItemPrice{
			{LineItemID: "cimento", UnitPrice: 0},
			{LineItemID: "areia", UnitPrice: 95},
		},
		PaymentTerms: "à vista",
		DeliveryTerm: "10 dias",
	}
	res := entity.DocumentParseResult{
		TextExtracted: true,
		PerItem: []entity.MatchResult{
			{LineItemID: "areia", Matched: false, Confidence: constants.ConfidenceHigh},
			{LineItemID: "cimento", UnitPrice: 32.5, Matched: true, Confidence: constants.ConfidenceHigh},
		},
		PaymentTerms: "28 dias",
	}

	out := ApplyParseResult(sheet, res)

	assert.Equal(t, 32.5, out.PriceFor("cimento"))
	assert.Equal(t, 95.0, out.PriceFor("areia"))
	assert.Equal(t, "28 dias", out.PaymentTerms)
	assert.Equal(t, "10 dias", out.DeliveryTerm)
	assert.Zero(t, sheet.PriceFor("cimento"), "input sheet must not change")
}

func TestApplyParseResult_NoTextLeavesSheet(t *testing.T) {
	sheet := entity.SupplierSheet{
		SupplierID:   "a",
		ItemPrices:   []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: 10}},
		PaymentTerms: "à vista",
	}
	res := entity.DocumentParseResult{
		PerItem:      []entity.MatchResult{{LineItemID: "cimento", UnitPrice: 99, Matched: true}},
		PaymentTerms: "28 dias",
	}

	out := ApplyParseResult(sheet, res)
	assert.Equal(t, sheet, out)
}

func TestItemWinner(t *testing.T) {
	q := newTestQuotation(t, "a", "b", "c")
	var err error
	q, err = SaveSheet(q, "a", []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: 31}, {LineItemID: "areia", UnitPrice: 0}}, WithClock(clock))
	require.NoError(t, err)
	q, err = SaveSheet(q, "b", []entity.ItemPrice{{LineItemID: "cimento", UnitPrice: 31}, {LineItemID: "areia", UnitPrice: 120}}, WithClock(clock))
	require.NoError(t, err)

	bid, ok := ItemWinner(q, "cimento")
	require.True(t, ok)
	assert.Equal(t, ItemBid{SupplierID: "a", UnitPrice: 31}, bid)

	bid, ok = ItemWinner(q, "areia")
	require.True(t, ok)
	assert.Equal(t, "b", bid.SupplierID)

	_, ok = ItemWinner(q, "brita")
	assert.False(t, ok)

	sum := Summarize(q)
	assert.Equal(t, constants.StatusPartial, sum.Status)
	require.NotNil(t, sum.Winner)
	assert.Equal(t, "a", sum.Winner.SupplierID)
	assert.Len(t, sum.ItemWinners, 2)
}

func TestRecomputeStatus(t *testing.T) {
	tests := []struct {
		name   string
		sheets []entity.SupplierSheet
		want   constants.QuotationStatus
	}{
		{"no sheets", nil, constants.StatusNotStarted},
		{"none responded", []entity.SupplierSheet{{}, {}}, constants.StatusNotStarted},
		{"some responded", []entity.SupplierSheet{{Responded: true}, {}}, constants.StatusPartial},
		{"all responded", []entity.SupplierSheet{{Responded: true}, {Responded: true}}, constants.StatusComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecomputeStatus(tt.sheets))
		})
	}
}
