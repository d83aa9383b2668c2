// server/internal/api/handlers/pharmacy_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"hospital-pharmacy-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PharmacyHandler struct {
	DB *mongo.Database
}

type CreatePharmacyRequest struct {
	PharmacyID string `json:"pharmacyID" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Department string `json:"department" binding:"required"`
	Location   string `json:"location"`
}

// CreatePharmacy registers a new pharmacy.
func (h *PharmacyHandler) CreatePharmacy(c *gin.Context) {
	var req CreatePharmacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	collection := h.DB.Collection("pharmacies")

	count, err := collection.CountDocuments(context.Background(), bson.M{"pharmacyID": req.PharmacyID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for pharmacy"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Pharmacy with this ID already exists"})
		return
	}

	newPharmacy := models.Pharmacy{
		PharmacyID: req.PharmacyID,
		Name:       req.Name,
		Department: req.Department,
		Location:   req.Location,
		Status:     "ACTIVE",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newPharmacy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create pharmacy"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newPharmacy.ID = oid
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "pharmacy": newPharmacy})
}

// GetAllPharmacies lists every registered pharmacy.
func (h *PharmacyHandler) GetAllPharmacies(c *gin.Context) {
	collection := h.DB.Collection("pharmacies")

	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query pharmacies"})
		return
	}
	defer cursor.Close(context.Background())

	var pharmacies []models.Pharmacy
	if err = cursor.All(context.Background(), &pharmacies); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode pharmacies"})
		return
	}

	if pharmacies == nil {
		pharmacies = []models.Pharmacy{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pharmacies": pharmacies})
}

// GetPharmacyByID returns one pharmacy by its pharmacyID.
func (h *PharmacyHandler) GetPharmacyByID(c *gin.Context) {
	pharmacyID := c.Param("id")

	collection := h.DB.Collection("pharmacies")
	var pharmacy models.Pharmacy
	err := collection.FindOne(context.Background(), bson.M{"pharmacyID": pharmacyID}).Decode(&pharmacy)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Pharmacy not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve pharmacy"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pharmacy": pharmacy})
}

// UpdatePharmacy updates a pharmacy's registry details.
func (h *PharmacyHandler) UpdatePharmacy(c *gin.Context) {
	pharmacyID := c.Param("id")

	var req CreatePharmacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	collection := h.DB.Collection("pharmacies")

	result, err := collection.UpdateOne(context.Background(), bson.M{"pharmacyID": pharmacyID}, bson.M{"$set": bson.M{
		"name":       req.Name,
		"department": req.Department,
		"location":   req.Location,
		"updatedAt":  time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update pharmacy"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Pharmacy not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pharmacy updated successfully"})
}

// DeletePharmacy removes a pharmacy from the registry. Its ledger, alerts and
// restock requests are left in place for audit.
func (h *PharmacyHandler) DeletePharmacy(c *gin.Context) {
	pharmacyID := c.Param("id")

	collection := h.DB.Collection("pharmacies")
	result, err := collection.DeleteOne(context.Background(), bson.M{"pharmacyID": pharmacyID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete pharmacy"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Pharmacy not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pharmacy deleted successfully"})
}
