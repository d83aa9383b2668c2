package stock

import (
	"hospital-pharmacy-api-server/internal/models"
)

// Pure mutation helpers over a ledger loaded in memory. Persistence and the
// alert/request side effects live in service.go; keeping these free of database
// calls makes the quantity invariants directly testable.

// setQty overwrites the quantity for a medicine, appending a new entry when the
// name is not stocked yet. Returns the quantity after the write.
func setQty(ledger *models.StockLedger, name string, qty int) int {
	if qty < 0 {
		qty = 0
	}
	for i := range ledger.Medicines {
		if ledger.Medicines[i].Name == name {
			ledger.Medicines[i].Qty = qty
			return qty
		}
	}
	ledger.Medicines = append(ledger.Medicines, models.MedicineStock{Name: name, Qty: qty})
	return qty
}

// reduceQty subtracts delta from a medicine, clamped at zero. The second return
// is false when the medicine is not stocked in this ledger; such entries are
// skipped by the caller, never created.
func reduceQty(ledger *models.StockLedger, name string, delta int) (int, bool) {
	if delta < 0 {
		delta = 0
	}
	for i := range ledger.Medicines {
		if ledger.Medicines[i].Name == name {
			newQty := ledger.Medicines[i].Qty - delta
			if newQty < 0 {
				newQty = 0
			}
			ledger.Medicines[i].Qty = newQty
			return newQty, true
		}
	}
	return 0, false
}

// increaseQty adds delta to a medicine, appending a new entry when the name is
// not stocked yet. Returns the quantity after the write.
func increaseQty(ledger *models.StockLedger, name string, delta int) int {
	if delta < 0 {
		delta = 0
	}
	for i := range ledger.Medicines {
		if ledger.Medicines[i].Name == name {
			ledger.Medicines[i].Qty += delta
			return ledger.Medicines[i].Qty
		}
	}
	ledger.Medicines = append(ledger.Medicines, models.MedicineStock{Name: name, Qty: delta})
	return delta
}

// coerceQty normalizes a raw JSON value from a bulk-update stock map to a
// non-negative whole quantity. Non-numeric or negative values coerce to 0.
func coerceQty(value interface{}) int {
	var qty int
	switch v := value.(type) {
	case float64:
		qty = int(v)
	case int:
		qty = v
	case int64:
		qty = int(v)
	}
	if qty < 0 {
		qty = 0
	}
	return qty
}

// resolveApprovedQty picks the amount to add to stock on approval: the
// admin-supplied quantity when positive, otherwise the originally requested
// quantity, otherwise zero.
func resolveApprovedQty(approvedQty, requestedQty int) int {
	if approvedQty > 0 {
		return approvedQty
	}
	if requestedQty > 0 {
		return requestedQty
	}
	return 0
}
