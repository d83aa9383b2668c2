package handlers

import (
	"context"
	"errors"
	"net/http"

	"hospital-pharmacy-api-server/internal/stock"

	"github.com/gin-gonic/gin"
)

type AdminStockHandler struct {
	Stock *stock.Service
}

type ApproveRequestPayload struct {
	RequestID   string `json:"requestId" binding:"required"`
	ApprovedQty int    `json:"approvedQty"`
	ProcessedBy string `json:"processedBy"`
	Notes       string `json:"notes"`
}

type RejectRequestPayload struct {
	RequestID   string `json:"requestId" binding:"required"`
	ProcessedBy string `json:"processedBy"`
	Notes       string `json:"notes"`
}

// ListStockRequests returns restock requests, newest first, optionally scoped
// to one pharmacy via the pharmacyId query parameter.
func (h *AdminStockHandler) ListStockRequests(c *gin.Context) {
	pharmacyID := c.Query("pharmacyId")

	requests, err := h.Stock.ListRequests(context.Background(), pharmacyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// GetStockRequest returns one restock request by its requestID.
func (h *AdminStockHandler) GetStockRequest(c *gin.Context) {
	requestID := c.Param("id")

	request, err := h.Stock.Request(context.Background(), requestID)
	if err != nil {
		if errors.Is(err, stock.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Restock request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
}

// ApproveStockRequest closes a pending request and credits the approved
// quantity to the pharmacy's stock. The approved quantity falls back to the
// originally requested amount when the body omits it.
func (h *AdminStockHandler) ApproveStockRequest(c *gin.Context) {
	var payload ApproveRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	processedBy := payload.ProcessedBy
	if processedBy == "" {
		processedBy = c.GetString("user_email")
	}

	request, ledger, err := h.Stock.Approve(context.Background(), payload.RequestID, payload.ApprovedQty, processedBy, payload.Notes)
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Restock request not found"})
		case errors.Is(err, stock.ErrRequestProcessed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request already processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": request, "stock": ledger.Medicines})
}

// RejectStockRequest closes a pending request without touching stock.
func (h *AdminStockHandler) RejectStockRequest(c *gin.Context) {
	var payload RejectRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	processedBy := payload.ProcessedBy
	if processedBy == "" {
		processedBy = c.GetString("user_email")
	}

	request, err := h.Stock.Reject(context.Background(), payload.RequestID, processedBy, payload.Notes)
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Restock request not found"})
		case errors.Is(err, stock.ErrRequestProcessed):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request already processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "request": request})
}
