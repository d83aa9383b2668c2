package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RestockRequest statuses. REQUESTED is the only non-terminal state; a partial
// unique index on (pharmacyID, medicine) where status=REQUESTED guarantees at
// most one open request per pair.
const (
	RequestStatusRequested = "REQUESTED"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
)

type RestockRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID    string             `bson:"requestID" json:"requestID"`
	PharmacyID   string             `bson:"pharmacyID" json:"pharmacyID"`
	Medicine     string             `bson:"medicine" json:"medicine"`
	RequestedQty int                `bson:"requestedQty" json:"requestedQty"`
	ApprovedQty  int                `bson:"approvedQty,omitempty" json:"approvedQty,omitempty"`
	Status       string             `bson:"status" json:"status"`
	ProcessedAt  *time.Time         `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	ProcessedBy  string             `bson:"processedBy,omitempty" json:"processedBy,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
