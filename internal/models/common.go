// server/internal/models/common.go
package models

// MedicineStock is one ledger line: a medicine name and the units on hand.
// Quantity never goes below zero.
type MedicineStock struct {
	Name string `bson:"name" json:"name"`
	Qty  int    `bson:"qty" json:"qty"`
}
