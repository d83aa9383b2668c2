// server/internal/models/pharmacy.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Pharmacy struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PharmacyID string             `bson:"pharmacyID" json:"pharmacyID"` // User-friendly unique ID, e.g., "pharmacy-east-wing"
	Name       string             `bson:"name" json:"name"`
	Department string             `bson:"department" json:"department"` // e.g., "OUTPATIENT", "INPATIENT", "EMERGENCY"
	Location   string             `bson:"location" json:"location"`     // e.g., "Building B, Ground Floor"
	Status     string             `bson:"status" json:"status"`         // e.g., "ACTIVE", "INACTIVE"
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
