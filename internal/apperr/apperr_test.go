package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsSetKindAndPayload(t *testing.T) {
	if e := Validation("sku_code", "bad code %q", "x"); e.Kind != KindValidation || e.Field != "sku_code" {
		t.Errorf("Validation() = %+v", e)
	}
	if e := ForeignKey("sku_id", "abc", "missing"); e.Kind != KindForeignKey || e.Value != "abc" {
		t.Errorf("ForeignKey() = %+v", e)
	}

	e := ReferentialIntegrity("requirement", "r1", 3, "blocked")
	if e.Kind != KindReferentialIntegrity || e.EntityType != "requirement" || e.DependentCount != 3 {
		t.Errorf("ReferentialIntegrity() = %+v", e)
	}

	nf := NotFound("sku", "s1")
	if nf.Kind != KindNotFound || nf.Message != "sku s1 not found" {
		t.Errorf("NotFound() = %+v", nf)
	}

	ae := AlreadyExists("order_code", "EPS-1")
	if ae.Kind != KindAlreadyExists || ae.Field != "order_code" || ae.Value != "EPS-1" {
		t.Errorf("AlreadyExists() = %+v", ae)
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	e := Internal(cause, "query failed")

	if !errors.Is(e, cause) {
		t.Error("Internal() should wrap its cause")
	}
	if got := e.Error(); got != "internal: query failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", BusinessLogic("sum off"), KindBusinessLogic},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("order", "o1")), KindNotFound},
		{"foreign", errors.New("plain"), KindInternal},
		{"nil chain", Internal(nil, "boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("sku", "s1")) {
		t.Error("IsNotFound() = false for a not-found error")
	}
	if IsNotFound(Validation("field", "bad")) {
		t.Error("IsNotFound() = true for a validation error")
	}
}
