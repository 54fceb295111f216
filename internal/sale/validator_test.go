package sale

import (
	"testing"
)

func codesOf(violations []Violation) map[string]bool {
	out := make(map[string]bool, len(violations))
	for _, v := range violations {
		out[v.Code] = true
	}
	return out
}

func TestValidateItemPassesValidItem(t *testing.T) {
	item := LineItem{Qty: 5, UnitPrice: 10_000, LineTotal: 50_000}
	if got := ValidateItem(item); len(got) != 0 {
		t.Fatalf("expected no violations, got %v", got)
	}
}

func TestValidateItemQuantityBounds(t *testing.T) {
	for _, qty := range []int{-3, 0, 21, 50} {
		item := LineItem{Qty: qty, UnitPrice: 100, LineTotal: int64(qty) * 100}
		codes := codesOf(ValidateItem(item))
		if !codes[CodeInvalidQuantity] {
			t.Fatalf("qty %d: expected %s, got %v", qty, CodeInvalidQuantity, codes)
		}
	}
}

func TestValidateItemCollectsEveryViolation(t *testing.T) {
	item := LineItem{Qty: 25, UnitPrice: -5, LineTotal: 0}
	codes := codesOf(ValidateItem(item))
	for _, want := range []string{CodeInvalidQuantity, CodeInvalidPrice, CodeInvalidTotal, CodeTotalMismatch} {
		if !codes[want] {
			t.Fatalf("expected %s among %v", want, codes)
		}
	}
}

func TestValidateItemTotalMismatch(t *testing.T) {
	item := LineItem{Qty: 3, UnitPrice: 700, LineTotal: 2_000}
	violations := ValidateItem(item)
	if len(violations) != 1 || violations[0].Code != CodeTotalMismatch {
		t.Fatalf("expected a single %s violation, got %v", CodeTotalMismatch, violations)
	}
}

func TestValidateItemsEmptySale(t *testing.T) {
	violations := ValidateItems(nil)
	if len(violations) != 1 || violations[0].Code != CodeEmptySale {
		t.Fatalf("expected %s, got %v", CodeEmptySale, violations)
	}
	if violations[0].Field != "items" {
		t.Fatalf("expected field items, got %q", violations[0].Field)
	}
}

func TestValidateItemsPrefixesFieldPaths(t *testing.T) {
	items := []LineItem{
		{Qty: 2, UnitPrice: 300, LineTotal: 600},
		{Qty: 0, UnitPrice: 300, LineTotal: 0},
	}
	violations := ValidateItems(items)
	if len(violations) == 0 {
		t.Fatal("expected violations for the second item")
	}
	for _, v := range violations {
		if got, want := v.Field[:9], "items[1]."; got != want {
			t.Fatalf("expected field prefix %q, got %q", want, v.Field)
		}
	}
}

func TestValidationErrorMessageListsViolations(t *testing.T) {
	err := &ValidationError{Violations: []Violation{
		{Code: CodeInvalidQuantity, Field: "items[0].qty"},
		{Code: CodeEmptySale, Field: "items"},
	}}
	msg := err.Error()
	if msg == "" || msg == "sale: validation failed" {
		t.Fatalf("expected violation listing in message, got %q", msg)
	}
}
