package sale

import (
	"fmt"
	"strings"

	"github.com/noah-isme/backend-vendas/internal/pricing"
)

// Violation codes reported by the line item validator.
const (
	CodeInvalidQuantity = "INVALID_QUANTITY"
	CodeInvalidPrice    = "INVALID_PRICE"
	CodeInvalidTotal    = "INVALID_TOTAL"
	CodeTotalMismatch   = "TOTAL_MISMATCH"
	CodeEmptySale       = "EMPTY_SALE"
)

// Violation records a single rule breach found during validation. Field is a
// JSON-ish path into the request payload ("items[2].qty").
type Violation struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in one pass. Callers get the
// full picture in a single round trip instead of fixing errors one at a time.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "sale: validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Code)
	}
	return "sale: validation failed: " + strings.Join(parts, "; ")
}

// ValidateItem checks one line item against every rule and returns all
// violations found, never stopping at the first. Field paths are relative to
// the item itself.
func ValidateItem(item LineItem) []Violation {
	var out []Violation
	if item.Qty < pricing.MinQuantity || item.Qty > pricing.MaxQuantity {
		out = append(out, Violation{
			Code:    CodeInvalidQuantity,
			Field:   "qty",
			Message: fmt.Sprintf("quantity must be between %d and %d, got %d", pricing.MinQuantity, pricing.MaxQuantity, item.Qty),
		})
	}
	if item.UnitPrice <= 0 {
		out = append(out, Violation{
			Code:    CodeInvalidPrice,
			Field:   "unitPrice",
			Message: "unit price must be positive",
		})
	}
	if item.LineTotal <= 0 {
		out = append(out, Violation{
			Code:    CodeInvalidTotal,
			Field:   "lineTotal",
			Message: "line total must be positive",
		})
	}
	if expected := item.UnitPrice * pricing.Money(item.Qty); item.LineTotal != expected {
		out = append(out, Violation{
			Code:    CodeTotalMismatch,
			Field:   "lineTotal",
			Message: fmt.Sprintf("line total %d does not match unit price times quantity (%d)", item.LineTotal, expected),
		})
	}
	return out
}

// ValidateItems validates a whole sale payload. An empty slice is itself a
// violation. Per-item field paths are prefixed with the item index.
func ValidateItems(items []LineItem) []Violation {
	if len(items) == 0 {
		return []Violation{{
			Code:    CodeEmptySale,
			Field:   "items",
			Message: "a sale must contain at least one item",
		}}
	}
	var out []Violation
	for i, item := range items {
		for _, v := range ValidateItem(item) {
			v.Field = fmt.Sprintf("items[%d].%s", i, v.Field)
			out = append(out, v)
		}
	}
	return out
}
