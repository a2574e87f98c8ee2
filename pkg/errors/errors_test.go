package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row lock timeout")
	err := Wrap(CodeDependency, cause, "deduct stock")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestAsFindsTypedErrorThroughChain(t *testing.T) {
	inner := New(CodeStateConflict, "order not holding")
	outer := fmt.Errorf("confirm reservation: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrap")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWithDetails(t *testing.T) {
	details := map[string]any{"required": "300", "available": "120"}
	err := New(CodeStateConflict, "insufficient balance").WithDetails(details)

	got, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", err.Details())
	}
	if got["required"] != "300" {
		t.Fatalf("details lost: %+v", got)
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("boom"), "outer")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected unwrap chain, got %v", dump.Chain)
	}
}
