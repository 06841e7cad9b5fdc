// Package shipment orchestrates validation-gated writes against the export
// backend: code list entry saves, the two-step product create, lab record
// saves, and the selected-shipment session.
package shipment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/domain/models"
	"github.com/aquaexport/seatrace/internal/service/allocation"
	"github.com/aquaexport/seatrace/internal/service/ledger"
	"github.com/aquaexport/seatrace/internal/service/reconcile"
)

// API is the slice of the export backend client this service needs.
type API interface {
	GetShipment(ctx context.Context, shipmentID string) (*models.Shipment, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListEntries(ctx context.Context, shipmentID string) ([]models.CodeListEntry, error)
	CreateEntry(ctx context.Context, entry models.CodeListEntry) (*models.CodeListEntry, error)
	UpdateEntry(ctx context.Context, entry models.CodeListEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	CreateGradeRequirements(ctx context.Context, productID string, rows []models.GradeRequirement) error
	DeleteProduct(ctx context.Context, productID string) error
	GetTraceabilityByCode(ctx context.Context, shipmentID, code string) (*models.TraceabilityRecord, error)
	CreateLabRecord(ctx context.Context, record models.LabRecord) (*models.LabRecord, error)
}

// Service gates every write behind the validators and keeps the session
// cache and exit-scan hook in one place.
type Service struct {
	api     API
	ledger  *ledger.Ledger
	scanner *reconcile.Scanner
	cache   *SessionCache
	logger  *zap.Logger

	// scanTimeout bounds the best-effort exit scan so it cannot outlive the
	// interest anyone has in its result.
	scanTimeout time.Duration
}

// NewService wires the orchestrator.
func NewService(api API, quantityLedger *ledger.Ledger, scanner *reconcile.Scanner, cache *SessionCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:         api,
		ledger:      quantityLedger,
		scanner:     scanner,
		cache:       cache,
		logger:      logger,
		scanTimeout: 30 * time.Second,
	}
}

// SelectShipment loads a shipment, makes it the current selection and
// fires a best-effort reconciliation scan of the shipment being left. The
// scan runs detached: leaving a screen must never wait on it.
func (s *Service) SelectShipment(ctx context.Context, shipmentID string) (models.Shipment, error) {
	loaded, err := s.api.GetShipment(ctx, shipmentID)
	if err != nil {
		return models.Shipment{}, fmt.Errorf("select shipment: %w", err)
	}

	previousID := s.cache.Select(*loaded)
	if previousID != "" && previousID != shipmentID {
		go s.exitScan(previousID)
	}
	return *loaded, nil
}

// CurrentShipment returns the cached selection, if any.
func (s *Service) CurrentShipment() (models.Shipment, bool) {
	return s.cache.Current()
}

func (s *Service) exitScan(shipmentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.scanTimeout)
	defer cancel()

	reports := s.scanner.ScanShipment(ctx, shipmentID)
	for _, report := range reports {
		s.logger.Warn("shipment left with unreconciled product",
			zap.String("shipment_id", report.ShipmentID),
			zap.String("product_code", report.ProductCode),
			zap.Float64("required", report.RequiredTotal),
			zap.Float64("allocated", report.AllocatedTotal))
	}
}

// Balance recomputes the quantity ledger for a product. excludeEntryID
// carries the entry under edit, or "".
func (s *Service) Balance(ctx context.Context, productID, excludeEntryID string) (models.Balance, error) {
	return s.ledger.ComputeBalance(ctx, productID, excludeEntryID)
}

// ValidateEntry runs the full allocation validation without persisting
// anything. The returned error is non-nil only when a validation input
// could not be fetched; per policy that blocks the save rather than letting
// an unverifiable entry through.
func (s *Service) ValidateEntry(ctx context.Context, entry models.CodeListEntry) (models.ValidationResult, error) {
	product, err := s.api.GetProduct(ctx, entry.ProductID)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("grade requirements unavailable, save blocked: %w", err)
	}

	siblings, err := s.api.ListEntries(ctx, entry.ShipmentID)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("code uniqueness unverifiable, save blocked: %w", err)
	}

	balance := ledger.BalanceFromSnapshot(*product, siblings, entry.ID)
	return allocation.ValidateAllocation(entry, *product, siblings, balance), nil
}

// SaveEntry validates a code list entry, persists it, and returns the
// ledger recomputed from the backend's post-write state. The recomputation
// is deliberate: the local candidate is not trusted as the final word on
// what persisted.
func (s *Service) SaveEntry(ctx context.Context, entry models.CodeListEntry) (models.Balance, error) {
	result, err := s.ValidateEntry(ctx, entry)
	if err != nil {
		return models.Balance{}, err
	}
	if !result.Ok() {
		return models.Balance{}, models.NewValidationError(result)
	}

	if entry.ID == "" {
		created, err := s.api.CreateEntry(ctx, entry)
		if err != nil {
			return models.Balance{}, fmt.Errorf("persist code list entry: %w", err)
		}
		entry = *created
	} else {
		if err := s.api.UpdateEntry(ctx, entry); err != nil {
			return models.Balance{}, fmt.Errorf("persist code list entry: %w", err)
		}
	}

	s.cache.MarkTouched(entry.ShipmentID)
	s.logger.Info("code list entry saved",
		zap.String("entry_id", entry.ID),
		zap.String("shipment_id", entry.ShipmentID),
		zap.String("code", entry.Code))

	return s.ledger.ComputeBalance(ctx, entry.ProductID, "")
}

// DeleteEntry removes a code list entry, freeing its allocation.
func (s *Service) DeleteEntry(ctx context.Context, shipmentID, entryID string) error {
	if err := s.api.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete code list entry: %w", err)
	}
	s.cache.MarkTouched(shipmentID)
	return nil
}

// CreateProductWithGrades runs the two-step product save: the product row
// first, its grade breakdown rows second. A step-2 failure triggers a
// compensating delete of the product; when even that fails the caller gets
// a PartialWriteError so the user learns the parent exists without its
// details instead of being told nothing was saved.
func (s *Service) CreateProductWithGrades(ctx context.Context, product models.Product) (*models.Product, error) {
	created, err := s.api.CreateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	rows := make([]models.GradeRequirement, 0, len(product.GradeRequirements))
	for grade, cartons := range product.GradeRequirements {
		rows = append(rows, models.GradeRequirement{
			ProductID:       created.ID,
			Grade:           grade,
			RequiredCartons: cartons,
		})
	}

	if err := s.api.CreateGradeRequirements(ctx, created.ID, rows); err != nil {
		if delErr := s.api.DeleteProduct(ctx, created.ID); delErr != nil {
			s.logger.Error("product rollback failed after detail-row failure",
				zap.String("product_id", created.ID),
				zap.NamedError("detail_err", err),
				zap.NamedError("rollback_err", delErr))
			return nil, &models.PartialWriteError{ParentKind: "product", ParentID: created.ID, Err: err}
		}
		return nil, fmt.Errorf("product detail rows rejected, creation rolled back: %w", err)
	}

	s.cache.MarkTouched(product.ShipmentID)
	return created, nil
}

// ValidateLabDates checks a lab record's dates against the production date
// of the traceability record its code points at. Returns an error when the
// traceability lookup fails; per policy that blocks the save.
func (s *Service) ValidateLabDates(ctx context.Context, record models.LabRecord) (models.ValidationResult, error) {
	if !record.Type.Valid() {
		return models.Invalid(fmt.Sprintf("Unknown lab record type %q", record.Type)), nil
	}

	trace, err := s.api.GetTraceabilityByCode(ctx, record.ShipmentID, record.Code)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("production date unverifiable, save blocked: %w", err)
	}

	if res := allocation.ValidateAnalysisDate(trace.ProductionDate, record.AnalysisDate); !res.Ok() {
		return res, nil
	}
	return allocation.ValidateCompletionDate(record.AnalysisDate, record.CompletionDate, record.Type.CompletionWindowDays()), nil
}

// SaveLabRecord gates a lab record save behind the temporal validators and
// persists it.
func (s *Service) SaveLabRecord(ctx context.Context, record models.LabRecord) (*models.LabRecord, error) {
	result, err := s.ValidateLabDates(ctx, record)
	if err != nil {
		return nil, err
	}
	if !result.Ok() {
		return nil, models.NewValidationError(result)
	}

	saved, err := s.api.CreateLabRecord(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("persist lab record: %w", err)
	}

	s.cache.MarkTouched(record.ShipmentID)
	s.logger.Info("lab record saved",
		zap.String("record_id", saved.ID),
		zap.String("code", saved.Code),
		zap.String("type", string(saved.Type)))
	return saved, nil
}

// ScanShipment exposes the on-demand reconciliation scan.
func (s *Service) ScanShipment(ctx context.Context, shipmentID string) []models.MismatchReport {
	return s.scanner.ScanShipment(ctx, shipmentID)
}
