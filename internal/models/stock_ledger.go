package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockLedger holds the full stock of one pharmacy. There is at most one
// ledger per pharmacyID (unique index) and at most one entry per medicine name.
// Version is an optimistic concurrency token: every save compares and bumps it
// so that two concurrent read-modify-write cycles cannot silently overwrite
// each other.
type StockLedger struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PharmacyID string             `bson:"pharmacyID" json:"pharmacyID"`
	Medicines  []MedicineStock    `bson:"medicines" json:"medicines"`
	Version    int64              `bson:"version" json:"-"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
