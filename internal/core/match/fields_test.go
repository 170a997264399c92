package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractField(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		want     string
	}{
		{
			name:     "cut at double space",
			text:     "Condição de pagamento: 28 dias  Prazo de entrega: 5 dias úteis\n",
			keywords: PaymentTermKeywords,
			want:     "28 dias",
		},
		{
			name:     "delivery on its own line",
			text:     "Condição de pagamento: 28 dias  Prazo de entrega: 5 dias úteis\nValidade: 10 dias",
			keywords: DeliveryTermKeywords,
			want:     "5 dias úteis",
		},
		{
			name:     "cut at semicolon",
			text:     "FORMA DE PAGAMENTO - boleto 30 dias; validade 10 dias",
			keywords: PaymentTermKeywords,
			want:     "boleto 30 dias",
		},
		{
			name:     "cut at boundary word",
			text:     "Pagamento: à vista Prazo: 3 dias",
			keywords: PaymentTermKeywords,
			want:     "à vista",
		},
		{
			name:     "boundary word must start a word",
			text:     "Pagamento: informar depois",
			keywords: PaymentTermKeywords,
			want:     "informar depois",
		},
		{
			name:     "boundary word must end a word",
			text:     "Forma de pagamento: boleto totalmente à vista",
			keywords: PaymentTermKeywords,
			want:     "boleto totalmente à vista",
		},
		{
			name:     "boundary word at end of value",
			text:     "Pagamento: 30 dias total",
			keywords: PaymentTermKeywords,
			want:     "30 dias",
		},
		{
			name:     "later synonym",
			text:     "Cond. pagamento: 30/60/90 ddl",
			keywords: PaymentTermKeywords,
			want:     "30/60/90 ddl",
		},
		{
			name:     "single character rejected",
			text:     "Entrega: 5",
			keywords: DeliveryTermKeywords,
			want:     "",
		},
		{
			name:     "too long rejected",
			text:     "Pagamento: " + strings.Repeat("a", 100),
			keywords: PaymentTermKeywords,
			want:     "",
		},
		{
			name:     "keyword absent",
			text:     "Orçamento sem condições",
			keywords: DeliveryTermKeywords,
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractField(tt.text, tt.keywords))
		})
	}
}
