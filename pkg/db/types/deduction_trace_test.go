package dbtypes

import (
	"testing"

	"github.com/google/uuid"
)

func TestDeductionTraceRoundTrip(t *testing.T) {
	lotA := uuid.New()
	lotB := uuid.New()
	trace := DeductionTrace{
		{StockLotID: lotA, DeductedQuantity: 3, QuantityBefore: 3},
		{StockLotID: lotB, DeductedQuantity: 2, QuantityBefore: 10},
	}

	val, err := trace.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var decoded DeductionTrace
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded))
	}
	if decoded[0].StockLotID != lotA || decoded[0].DeductedQuantity != 3 || decoded[0].QuantityBefore != 3 {
		t.Fatalf("first entry mismatch: %+v", decoded[0])
	}
	if decoded[1].StockLotID != lotB {
		t.Fatalf("second entry mismatch: %+v", decoded[1])
	}
	if decoded.TotalDeducted() != 5 {
		t.Fatalf("TotalDeducted = %d, want 5", decoded.TotalDeducted())
	}
}

func TestDeductionTraceScanNilAndEmpty(t *testing.T) {
	var trace DeductionTrace
	if err := trace.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("expected empty trace, got %d entries", len(trace))
	}

	if err := trace.Scan([]byte("[]")); err != nil {
		t.Fatalf("Scan([]): %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("expected empty trace, got %d entries", len(trace))
	}

	val, err := DeductionTrace{}.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if val != "[]" {
		t.Fatalf("empty trace Value = %v, want []", val)
	}
}

func TestDeductionTraceScanRejectsUnknownType(t *testing.T) {
	var trace DeductionTrace
	if err := trace.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}
