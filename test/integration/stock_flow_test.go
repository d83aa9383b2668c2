// Package integration exercises the stock/replenishment workflow against a
// real MongoDB. Set MONGO_TEST_URI to run, e.g.
//
//	MONGO_TEST_URI=mongodb://localhost:27017 go test ./test/integration/
package integration

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"hospital-pharmacy-api-server/config"
	"hospital-pharmacy-api-server/internal/database"
	"hospital-pharmacy-api-server/internal/models"
	"hospital-pharmacy-api-server/internal/stock"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupService(t *testing.T) (*stock.Service, context.Context) {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	db := client.Database("hospital_pharmacy_test")
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := database.EnsureIndexes(db); err != nil {
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	policy := config.StockConfig{LowStockThreshold: 10, DefaultRestockQty: 50}
	return stock.NewService(db, policy), ctx
}

func openRequests(t *testing.T, ctx context.Context, svc *stock.Service, pharmacyID string) []models.RestockRequest {
	t.Helper()
	requests, err := svc.ListRequests(ctx, pharmacyID)
	if err != nil {
		t.Fatalf("listing requests failed: %v", err)
	}
	var open []models.RestockRequest
	for _, r := range requests {
		if r.Status == models.RequestStatusRequested {
			open = append(open, r)
		}
	}
	return open
}

func alertCount(t *testing.T, ctx context.Context, svc *stock.Service, pharmacyID string) int {
	t.Helper()
	alerts, err := svc.Alerts(ctx, pharmacyID)
	if err != nil {
		t.Fatalf("listing alerts failed: %v", err)
	}
	return len(alerts)
}

func TestRestockWorkflow(t *testing.T) {
	svc, ctx := setupService(t)

	// Initialization is idempotent: the second call must not overwrite.
	ledger, err := svc.Initialize(ctx, "P1", []models.MedicineStock{{Name: "Paracetamol", Qty: 15}})
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if len(ledger.Medicines) != 1 || ledger.Medicines[0].Qty != 15 {
		t.Fatalf("unexpected initial ledger: %+v", ledger.Medicines)
	}
	if _, err := svc.Initialize(ctx, "P1", []models.MedicineStock{{Name: "Paracetamol", Qty: 999}}); !errors.Is(err, stock.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
	if relo, _ := svc.Ledger(ctx, "P1"); relo.Medicines[0].Qty != 15 {
		t.Fatalf("repeat initialize overwrote the ledger: %+v", relo.Medicines)
	}

	// Reduce against a pharmacy with no ledger fails with NotFound.
	if _, err := svc.Reduce(ctx, "nope", []models.MedicineStock{{Name: "Paracetamol", Qty: 1}}); !errors.Is(err, stock.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}

	// Dispensing below the threshold raises exactly one alert and opens one request.
	ledger, err = svc.Reduce(ctx, "P1", []models.MedicineStock{{Name: "Paracetamol", Qty: 6}})
	if err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	if ledger.Medicines[0].Qty != 9 {
		t.Fatalf("expected qty 9 after reduce, got %d", ledger.Medicines[0].Qty)
	}
	if got := alertCount(t, ctx, svc, "P1"); got != 1 {
		t.Fatalf("expected 1 alert, got %d", got)
	}
	alerts, _ := svc.Alerts(ctx, "P1")
	if !strings.Contains(alerts[0].Message, "Paracetamol only 9 left") {
		t.Fatalf("unexpected alert message: %q", alerts[0].Message)
	}
	open := openRequests(t, ctx, svc, "P1")
	if len(open) != 1 || open[0].RequestedQty != 50 {
		t.Fatalf("expected one open request for 50 units, got %+v", open)
	}
	firstRequestID := open[0].RequestID

	// A second low-stock trigger alerts again but must not open a second request.
	if _, err := svc.Reduce(ctx, "P1", []models.MedicineStock{{Name: "Paracetamol", Qty: 1}}); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	if got := alertCount(t, ctx, svc, "P1"); got != 2 {
		t.Fatalf("expected 2 alerts, got %d", got)
	}
	if open = openRequests(t, ctx, svc, "P1"); len(open) != 1 {
		t.Fatalf("duplicate open request created: %+v", open)
	}

	// Approval credits the approved quantity, not the requested one.
	request, ledger, err := svc.Approve(ctx, firstRequestID, 40, "admin1", "ok")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if request.Status != models.RequestStatusApproved || request.ApprovedQty != 40 {
		t.Fatalf("unexpected approved request: %+v", request)
	}
	if request.ProcessedBy != "admin1" || request.ProcessedAt == nil {
		t.Fatalf("processing metadata missing: %+v", request)
	}
	if ledger.Medicines[0].Qty != 48 { // 8 + 40
		t.Fatalf("expected qty 48 after approval, got %d", ledger.Medicines[0].Qty)
	}

	// Terminal states are terminal.
	if _, _, err := svc.Approve(ctx, firstRequestID, 10, "admin1", ""); !errors.Is(err, stock.ErrRequestProcessed) {
		t.Fatalf("expected ErrRequestProcessed, got %v", err)
	}
	if _, err := svc.Reject(ctx, firstRequestID, "admin1", ""); !errors.Is(err, stock.ErrRequestProcessed) {
		t.Fatalf("expected ErrRequestProcessed, got %v", err)
	}

	// With the prior request closed, a new low-stock trigger opens a fresh one.
	if _, err := svc.Reduce(ctx, "P1", []models.MedicineStock{{Name: "Paracetamol", Qty: 44}}); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	open = openRequests(t, ctx, svc, "P1")
	if len(open) != 1 || open[0].RequestID == firstRequestID {
		t.Fatalf("expected one fresh open request, got %+v", open)
	}

	// Rejection closes the request without touching stock.
	rejected, err := svc.Reject(ctx, open[0].RequestID, "admin2", "budget")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != models.RequestStatusRejected || rejected.ProcessedBy != "admin2" {
		t.Fatalf("unexpected rejected request: %+v", rejected)
	}
	ledger, _ = svc.Ledger(ctx, "P1")
	if ledger.Medicines[0].Qty != 4 { // 48 - 44, unchanged by rejection
		t.Fatalf("rejection changed stock: %d", ledger.Medicines[0].Qty)
	}

	// Approval with no explicit quantity falls back to the requested amount.
	if _, err := svc.Reduce(ctx, "P1", []models.MedicineStock{{Name: "Paracetamol", Qty: 0}}); err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	open = openRequests(t, ctx, svc, "P1")
	if len(open) != 1 {
		t.Fatalf("expected a new open request after rejection, got %+v", open)
	}
	request, ledger, err = svc.Approve(ctx, open[0].RequestID, 0, "admin1", "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if request.ApprovedQty != 50 || ledger.Medicines[0].Qty != 54 { // 4 + 50
		t.Fatalf("fallback approval wrong: approvedQty=%d qty=%d", request.ApprovedQty, ledger.Medicines[0].Qty)
	}
}

func TestIncreaseAlwaysAlerts(t *testing.T) {
	svc, ctx := setupService(t)

	if _, err := svc.Initialize(ctx, "P2", []models.MedicineStock{{Name: "Ibuprofen", Qty: 500}}); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	before := alertCount(t, ctx, svc, "P2")
	ledger, err := svc.Increase(ctx, "P2", []models.MedicineStock{{Name: "Ibuprofen", Qty: 100}})
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if ledger.Medicines[0].Qty != 600 {
		t.Fatalf("expected 600, got %d", ledger.Medicines[0].Qty)
	}
	// The restock alert is informational, not threshold-gated.
	if got := alertCount(t, ctx, svc, "P2"); got != before+1 {
		t.Fatalf("expected %d alerts after increase, got %d", before+1, got)
	}
	alerts, _ := svc.Alerts(ctx, "P2")
	if !strings.Contains(alerts[0].Message, "Stock increased: Ibuprofen") {
		t.Fatalf("unexpected restock alert: %q", alerts[0].Message)
	}

	// Increase appends medicines that were never stocked.
	ledger, err = svc.Increase(ctx, "P2", []models.MedicineStock{{Name: "Insulin", Qty: 5}})
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if len(ledger.Medicines) != 2 {
		t.Fatalf("expected appended medicine, got %+v", ledger.Medicines)
	}

	// No ledger, no increase.
	if _, err := svc.Increase(ctx, "nope", []models.MedicineStock{{Name: "Insulin", Qty: 5}}); !errors.Is(err, stock.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}
}

func TestBulkSetCreatesAndAlerts(t *testing.T) {
	svc, ctx := setupService(t)

	// First bulk update creates the ledger.
	ledger, err := svc.BulkSet(ctx, "P3", map[string]interface{}{
		"Insulin": float64(5),
		"Saline":  float64(30),
	})
	if err != nil {
		t.Fatalf("bulk set failed: %v", err)
	}
	if len(ledger.Medicines) != 2 {
		t.Fatalf("expected 2 entries, got %+v", ledger.Medicines)
	}

	// Only the entry at or below the threshold alerts and opens a request.
	alerts, _ := svc.Alerts(ctx, "P3")
	if len(alerts) != 1 || alerts[0].Medicine != "Insulin" {
		t.Fatalf("expected one Insulin alert, got %+v", alerts)
	}
	open := openRequests(t, ctx, svc, "P3")
	if len(open) != 1 || open[0].Medicine != "Insulin" {
		t.Fatalf("expected one open Insulin request, got %+v", open)
	}

	// Set is absolute, and garbage values coerce to zero.
	ledger, err = svc.BulkSet(ctx, "P3", map[string]interface{}{
		"Saline": "plenty",
	})
	if err != nil {
		t.Fatalf("bulk set failed: %v", err)
	}
	for _, m := range ledger.Medicines {
		if m.Name == "Saline" && m.Qty != 0 {
			t.Fatalf("expected Saline coerced to 0, got %d", m.Qty)
		}
	}
}
