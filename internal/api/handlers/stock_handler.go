// server/internal/api/handlers/stock_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"hospital-pharmacy-api-server/internal/models"
	"hospital-pharmacy-api-server/internal/stock"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	Stock *stock.Service
}

type InitStockPayload struct {
	Medicines []models.MedicineStock `json:"medicines"`
}

type UpdateStockPayload struct {
	PharmacyID string                 `json:"pharmacyId" binding:"required"`
	Stock      map[string]interface{} `json:"stock" binding:"required"`
}

type StockDeltaPayload struct {
	PharmacyID string                 `json:"pharmacyId" binding:"required"`
	Medicines  []models.MedicineStock `json:"medicines" binding:"required,dive"`
}

// InitStock creates the stock ledger for a pharmacy, optionally pre-filled.
// Repeat calls never overwrite an existing ledger.
func (h *StockHandler) InitStock(c *gin.Context) {
	pharmacyID := c.Param("pharmacyId")

	var payload InitStockPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
	}

	ledger, err := h.Stock.Initialize(context.Background(), pharmacyID, payload.Medicines)
	if err != nil {
		if errors.Is(err, stock.ErrAlreadyInitialized) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Already initialized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "stock": ledger.Medicines})
}

// GetStock returns the pharmacy's current stock. A pharmacy with no ledger
// reads as an empty list.
func (h *StockHandler) GetStock(c *gin.Context) {
	pharmacyID := c.Param("pharmacyId")

	ledger, err := h.Stock.Ledger(context.Background(), pharmacyID)
	if err != nil {
		if errors.Is(err, stock.ErrLedgerNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": true, "stock": []models.MedicineStock{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stock": ledger.Medicines})
}

// UpdateStock overwrites quantities from a medicine -> quantity map. This is
// "set", not "add": the body carries the full desired quantities.
func (h *StockHandler) UpdateStock(c *gin.Context) {
	var payload UpdateStockPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ledger, err := h.Stock.BulkSet(context.Background(), payload.PharmacyID, payload.Stock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stock": ledger.Medicines})
}

// ReduceStock subtracts dispensed quantities from the ledger.
func (h *StockHandler) ReduceStock(c *gin.Context) {
	var payload StockDeltaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ledger, err := h.Stock.Reduce(context.Background(), payload.PharmacyID, payload.Medicines)
	if err != nil {
		if errors.Is(err, stock.ErrLedgerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Stock not initialized for this pharmacy"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stock": ledger.Medicines})
}

// IncreaseStock adds restocked quantities to the ledger.
func (h *StockHandler) IncreaseStock(c *gin.Context) {
	var payload StockDeltaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ledger, err := h.Stock.Increase(context.Background(), payload.PharmacyID, payload.Medicines)
	if err != nil {
		if errors.Is(err, stock.ErrLedgerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Stock not initialized for this pharmacy"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stock": ledger.Medicines})
}

// GetAlerts returns the pharmacy's alert log, newest first.
func (h *StockHandler) GetAlerts(c *gin.Context) {
	pharmacyID := c.Param("pharmacyId")

	alerts, err := h.Stock.Alerts(context.Background(), pharmacyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "alerts": alerts})
}
