package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert is an append-only stock notification. Low-stock alerts are raised when
// a mutation leaves a medicine at or below the configured threshold; restock
// alerts are raised on every stock increase.
type Alert struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PharmacyID string             `bson:"pharmacyID" json:"pharmacyID"`
	Medicine   string             `bson:"medicine" json:"medicine"`
	Message    string             `bson:"message" json:"message"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
