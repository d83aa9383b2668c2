package stock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"hospital-pharmacy-api-server/config"
	"hospital-pharmacy-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrAlreadyInitialized = errors.New("stock already initialized for this pharmacy")
	ErrLedgerNotFound     = errors.New("stock ledger not found")
	ErrRequestNotFound    = errors.New("restock request not found")
	ErrRequestProcessed   = errors.New("request already processed")

	errStaleLedger = errors.New("ledger was modified concurrently")
)

// saveAttempts bounds the optimistic-concurrency retry loop on ledger saves.
const saveAttempts = 3

// Service implements the stock mutation and admin adjudication workflows over
// the stock_ledgers, stock_alerts and restock_requests collections.
type Service struct {
	DB     *mongo.Database
	Policy config.StockConfig
}

func NewService(db *mongo.Database, policy config.StockConfig) *Service {
	return &Service{DB: db, Policy: policy}
}

func (s *Service) ledgers() *mongo.Collection  { return s.DB.Collection("stock_ledgers") }
func (s *Service) alerts() *mongo.Collection   { return s.DB.Collection("stock_alerts") }
func (s *Service) requests() *mongo.Collection { return s.DB.Collection("restock_requests") }

// Initialize creates the ledger for a pharmacy with an optional starting stock
// list. A pharmacy that already has a ledger is never overwritten; repeat calls
// return ErrAlreadyInitialized.
func (s *Service) Initialize(ctx context.Context, pharmacyID string, medicines []models.MedicineStock) (*models.StockLedger, error) {
	now := time.Now()

	cleaned := make([]models.MedicineStock, 0, len(medicines))
	seen := make(map[string]bool, len(medicines))
	for _, m := range medicines {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		if m.Qty < 0 {
			m.Qty = 0
		}
		cleaned = append(cleaned, m)
	}

	ledger := &models.StockLedger{
		PharmacyID: pharmacyID,
		Medicines:  cleaned,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result, err := s.ledgers().InsertOne(ctx, ledger)
	if err != nil {
		// The unique index on pharmacyID makes repeat initialization a no-op.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyInitialized
		}
		return nil, err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ledger.ID = oid
	}
	return ledger, nil
}

// Ledger returns the pharmacy's ledger, or ErrLedgerNotFound.
func (s *Service) Ledger(ctx context.Context, pharmacyID string) (*models.StockLedger, error) {
	var ledger models.StockLedger
	err := s.ledgers().FindOne(ctx, bson.M{"pharmacyID": pharmacyID}).Decode(&ledger)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	if ledger.Medicines == nil {
		ledger.Medicines = []models.MedicineStock{}
	}
	return &ledger, nil
}

// BulkSet overwrites quantities from a name -> quantity map; names not stocked
// yet are appended, and the ledger itself is created on first use. This is
// "set", not "add": callers supply absolute desired quantities. Every entry
// left at or below the low-stock threshold raises an alert and opens a restock
// request if none is open for that medicine.
func (s *Service) BulkSet(ctx context.Context, pharmacyID string, stock map[string]interface{}) (*models.StockLedger, error) {
	// Stable order so multi-entry updates alert deterministically.
	names := make([]string, 0, len(stock))
	for name := range stock {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for attempt := 0; attempt < saveAttempts; attempt++ {
		ledger, err := s.Ledger(ctx, pharmacyID)
		if errors.Is(err, ErrLedgerNotFound) {
			ledger, err = s.Initialize(ctx, pharmacyID, nil)
			if errors.Is(err, ErrAlreadyInitialized) {
				// Lost the creation race; reload and go again.
				continue
			}
		}
		if err != nil {
			return nil, err
		}

		var low []models.MedicineStock
		for _, name := range names {
			newQty := setQty(ledger, name, coerceQty(stock[name]))
			if newQty <= s.Policy.LowStockThreshold {
				low = append(low, models.MedicineStock{Name: name, Qty: newQty})
			}
		}

		saved, err := s.save(ctx, ledger)
		if errors.Is(err, errStaleLedger) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.raiseLowStock(ctx, pharmacyID, low)
		return saved, nil
	}
	return nil, errStaleLedger
}

// Reduce subtracts dispensed quantities. The ledger must exist; medicines not
// stocked in it are silently skipped. Quantities clamp at zero and the same
// low-stock side effects as BulkSet apply.
func (s *Service) Reduce(ctx context.Context, pharmacyID string, medicines []models.MedicineStock) (*models.StockLedger, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		ledger, err := s.Ledger(ctx, pharmacyID)
		if err != nil {
			return nil, err
		}

		var low []models.MedicineStock
		for _, m := range medicines {
			newQty, ok := reduceQty(ledger, m.Name, m.Qty)
			if !ok {
				continue
			}
			if newQty <= s.Policy.LowStockThreshold {
				low = append(low, models.MedicineStock{Name: m.Name, Qty: newQty})
			}
		}

		saved, err := s.save(ctx, ledger)
		if errors.Is(err, errStaleLedger) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.raiseLowStock(ctx, pharmacyID, low)
		return saved, nil
	}
	return nil, errStaleLedger
}

// Increase adds restocked quantities, appending medicines not stocked yet. The
// ledger must exist. Every entry raises an informational restock alert,
// regardless of the resulting quantity.
func (s *Service) Increase(ctx context.Context, pharmacyID string, medicines []models.MedicineStock) (*models.StockLedger, error) {
	return s.increase(ctx, pharmacyID, medicines, false)
}

type restockedEntry struct {
	name  string
	added int
	total int
}

func (s *Service) increase(ctx context.Context, pharmacyID string, medicines []models.MedicineStock, createIfMissing bool) (*models.StockLedger, error) {
	for attempt := 0; attempt < saveAttempts; attempt++ {
		ledger, err := s.Ledger(ctx, pharmacyID)
		if errors.Is(err, ErrLedgerNotFound) && createIfMissing {
			ledger, err = s.Initialize(ctx, pharmacyID, nil)
			if errors.Is(err, ErrAlreadyInitialized) {
				continue
			}
		}
		if err != nil {
			return nil, err
		}

		restocked := make([]restockedEntry, 0, len(medicines))
		for _, m := range medicines {
			added := m.Qty
			if added < 0 {
				added = 0
			}
			total := increaseQty(ledger, m.Name, added)
			restocked = append(restocked, restockedEntry{name: m.Name, added: added, total: total})
		}

		saved, err := s.save(ctx, ledger)
		if errors.Is(err, errStaleLedger) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.raiseRestocked(ctx, pharmacyID, restocked)
		return saved, nil
	}
	return nil, errStaleLedger
}

// save commits a read-modify-write cycle with a compare-and-swap on the
// version token. errStaleLedger means another writer got there first and the
// caller should reload and retry.
func (s *Service) save(ctx context.Context, ledger *models.StockLedger) (*models.StockLedger, error) {
	now := time.Now()
	result, err := s.ledgers().UpdateOne(ctx,
		bson.M{"pharmacyID": ledger.PharmacyID, "version": ledger.Version},
		bson.M{
			"$set": bson.M{"medicines": ledger.Medicines, "updatedAt": now},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, errStaleLedger
	}
	ledger.Version++
	ledger.UpdatedAt = now
	return ledger, nil
}

// raiseLowStock appends one low-stock alert per entry and opens a restock
// request for each medicine that has none open. Alerts are emitted only after
// the ledger save committed, so an alert never references a quantity that was
// not persisted. Emission failures are logged, not surfaced: the stock write
// itself already succeeded.
func (s *Service) raiseLowStock(ctx context.Context, pharmacyID string, entries []models.MedicineStock) {
	now := time.Now()
	for _, e := range entries {
		alert := models.Alert{
			PharmacyID: pharmacyID,
			Medicine:   e.Name,
			Message:    fmt.Sprintf("Low stock alert: %s only %d left", e.Name, e.Qty),
			CreatedAt:  now,
		}
		if _, err := s.alerts().InsertOne(ctx, alert); err != nil {
			log.Printf("Failed to record low-stock alert for %s/%s: %v", pharmacyID, e.Name, err)
		}
		s.openRestockRequest(ctx, pharmacyID, e.Name)
	}
}

func (s *Service) raiseRestocked(ctx context.Context, pharmacyID string, entries []restockedEntry) {
	now := time.Now()
	for _, e := range entries {
		alert := models.Alert{
			PharmacyID: pharmacyID,
			Medicine:   e.name,
			Message:    fmt.Sprintf("Stock increased: %s +%d, now %d in stock", e.name, e.added, e.total),
			CreatedAt:  now,
		}
		if _, err := s.alerts().InsertOne(ctx, alert); err != nil {
			log.Printf("Failed to record restock alert for %s/%s: %v", pharmacyID, e.name, err)
		}
	}
}

// openRestockRequest inserts a new REQUESTED entry for the pair. The partial
// unique index on (pharmacyID, medicine, status=REQUESTED) turns a concurrent
// double-open into a duplicate-key error, which simply means a request is
// already pending.
func (s *Service) openRestockRequest(ctx context.Context, pharmacyID, medicine string) {
	request := models.RestockRequest{
		RequestID:    fmt.Sprintf("RSR-%s", strings.ToUpper(uuid.New().String()[:8])),
		PharmacyID:   pharmacyID,
		Medicine:     medicine,
		RequestedQty: s.Policy.DefaultRestockQty,
		Status:       models.RequestStatusRequested,
		CreatedAt:    time.Now(),
	}
	if _, err := s.requests().InsertOne(ctx, request); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return
		}
		log.Printf("Failed to open restock request for %s/%s: %v", pharmacyID, medicine, err)
	}
}

// Alerts returns the pharmacy's alert log, newest first.
func (s *Service) Alerts(ctx context.Context, pharmacyID string) ([]models.Alert, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.alerts().Find(ctx, bson.M{"pharmacyID": pharmacyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err = cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts, nil
}

// ListRequests returns restock requests, newest first, optionally scoped to
// one pharmacy.
func (s *Service) ListRequests(ctx context.Context, pharmacyID string) ([]models.RestockRequest, error) {
	filter := bson.M{}
	if pharmacyID != "" {
		filter["pharmacyID"] = pharmacyID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.requests().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.RestockRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.RestockRequest{}
	}
	return requests, nil
}

// Request returns one restock request by its requestID.
func (s *Service) Request(ctx context.Context, requestID string) (*models.RestockRequest, error) {
	var request models.RestockRequest
	err := s.requests().FindOne(ctx, bson.M{"requestID": requestID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// Approve closes a REQUESTED restock request and applies the approved quantity
// to the pharmacy's ledger, creating ledger or medicine entry as needed. The
// request is claimed first with a status-conditioned update, so a concurrent or
// repeated approval can never apply the increment twice.
func (s *Service) Approve(ctx context.Context, requestID string, approvedQty int, processedBy, notes string) (*models.RestockRequest, *models.StockLedger, error) {
	request, err := s.Request(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != models.RequestStatusRequested {
		return nil, nil, ErrRequestProcessed
	}

	qty := resolveApprovedQty(approvedQty, request.RequestedQty)
	now := time.Now()

	result := s.requests().FindOneAndUpdate(ctx,
		bson.M{"requestID": requestID, "status": models.RequestStatusRequested},
		bson.M{"$set": bson.M{
			"status":      models.RequestStatusApproved,
			"approvedQty": qty,
			"processedAt": now,
			"processedBy": processedBy,
			"notes":       notes,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err := result.Decode(request); err != nil {
		if err == mongo.ErrNoDocuments {
			// Someone else claimed it between the read and the update.
			return nil, nil, ErrRequestProcessed
		}
		return nil, nil, err
	}

	ledger, err := s.increase(ctx, request.PharmacyID, []models.MedicineStock{{Name: request.Medicine, Qty: qty}}, true)
	if err != nil {
		return request, nil, err
	}
	return request, ledger, nil
}

// Reject closes a REQUESTED restock request without touching stock.
func (s *Service) Reject(ctx context.Context, requestID string, processedBy, notes string) (*models.RestockRequest, error) {
	request, err := s.Request(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusRequested {
		return nil, ErrRequestProcessed
	}

	now := time.Now()
	result := s.requests().FindOneAndUpdate(ctx,
		bson.M{"requestID": requestID, "status": models.RequestStatusRequested},
		bson.M{"$set": bson.M{
			"status":      models.RequestStatusRejected,
			"processedAt": now,
			"processedBy": processedBy,
			"notes":       notes,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err := result.Decode(request); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestProcessed
		}
		return nil, err
	}
	return request, nil
}
