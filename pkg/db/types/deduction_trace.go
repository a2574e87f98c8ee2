package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DeductionEntry records how much a single stock lot contributed to a
// fulfilled line item and the lot's quantity before the deduction.
type DeductionEntry struct {
	StockLotID       uuid.UUID `json:"stock_lot_id"`
	DeductedQuantity int64     `json:"deducted_quantity"`
	QuantityBefore   int64     `json:"quantity_before"`
}

// DeductionTrace is the ordered set of per-lot deductions behind one line
// item, stored as jsonb. Restoring a line replays the trace in order.
type DeductionTrace []DeductionEntry

func (t *DeductionTrace) Scan(src any) error {
	if src == nil {
		*t = DeductionTrace{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return t.parseJSON([]byte(v))
	case []byte:
		return t.parseJSON(v)
	default:
		return fmt.Errorf("DeductionTrace: unsupported Scan type %T", src)
	}
}

func (t DeductionTrace) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("DeductionTrace: marshal: %w", err)
	}
	return string(raw), nil
}

// TotalDeducted sums the quantities across all entries.
func (t DeductionTrace) TotalDeducted() int64 {
	var total int64
	for _, e := range t {
		total += e.DeductedQuantity
	}
	return total
}

func (t *DeductionTrace) parseJSON(raw []byte) error {
	if len(raw) == 0 {
		*t = DeductionTrace{}
		return nil
	}
	var out []DeductionEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("DeductionTrace: parse: %w", err)
	}
	*t = DeductionTrace(out)
	return nil
}
