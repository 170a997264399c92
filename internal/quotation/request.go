package quotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
)

// Supplier is an invited supplier; each one gets an empty sheet on creation.
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Request is the purchase order a quotation is opened against.
type Request struct {
	Number    string            `json:"number"`
	Items     []entity.LineItem `json:"items"`
	Suppliers []Supplier        `json:"suppliers"`
}

var requestSchema = map[string]any{
	"type":     "object",
	"required": []string{"items", "suppliers"},
	"properties": map[string]any{
		"number": map[string]any{"type": "string"},
		"items": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "description"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"quantity":    map[string]any{"type": "number", "minimum": 0},
					"unit":        map[string]any{"type": "string"},
				},
			},
		},
		"suppliers": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id"},
				"properties": map[string]any{
					"id":   map[string]any{"type": "string", "minLength": 1},
					"name": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(requestSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("request.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("request.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// DecodeRequest parses and validates a purchase-order JSON document.
// Schema and id-uniqueness failures wrap common.ErrValidation.
func DecodeRequest(data []byte) (Request, error) {
	s, err := schema()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Request{}, fmt.Errorf("%w: unmarshal request: %w", common.ErrValidation, err)
	}
	if err := s.Validate(v); err != nil {
		return Request{}, fmt.Errorf("%w: request does not match schema: %w", common.ErrValidation, err)
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("%w: decode request: %w", common.ErrValidation, err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks what the schema cannot: ids are unique within items and
// within suppliers.
func (r Request) Validate() error {
	v := common.NewValidator()
	items := make(map[string]struct{}, len(r.Items))
	for i, it := range r.Items {
		field := fmt.Sprintf("items[%d].id", i)
		v.Field(field, it.ID, common.Required)
		if _, dup := items[it.ID]; dup {
			v.Field(field, it.ID, duplicate)
		}
		items[it.ID] = struct{}{}
		v.Field(fmt.Sprintf("items[%d].quantity", i), it.Quantity, common.NonNegative)
	}
	suppliers := make(map[string]struct{}, len(r.Suppliers))
	for i, s := range r.Suppliers {
		field := fmt.Sprintf("suppliers[%d].id", i)
		v.Field(field, s.ID, common.Required)
		if _, dup := suppliers[s.ID]; dup {
			v.Field(field, s.ID, duplicate)
		}
		suppliers[s.ID] = struct{}{}
	}
	return v.Error()
}
