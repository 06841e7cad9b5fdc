// Package reconcile implements the advisory shipment scan: after-the-fact
// comparison of product requirements against the code list allocations that
// should partition them.
package reconcile

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

// quantityEpsilon mirrors the tolerance used at validation time; a scan must
// not flag differences the validators would have allowed.
const quantityEpsilon = 0.01

// Source provides the shipment-wide snapshots a scan runs over.
type Source interface {
	ListProducts(ctx context.Context, shipmentID string) ([]models.Product, error)
	ListEntries(ctx context.Context, shipmentID string) ([]models.CodeListEntry, error)
}

// Scanner cross-checks aggregate totals for a whole shipment. It is strictly
// advisory: fetch failures are logged and swallowed, and a scan never blocks
// or reverses whatever user action triggered it.
type Scanner struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// NewScanner wires a scanner over the given snapshot source.
func NewScanner(source Source, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{source: source, logger: logger, now: time.Now}
}

// ScanShipment fetches the shipment's products and entries and reports every
// product whose required total disagrees with the sum of its allocations.
// Returns nil both when everything reconciles and when the snapshot could
// not be fetched.
func (s *Scanner) ScanShipment(ctx context.Context, shipmentID string) []models.MismatchReport {
	products, err := s.source.ListProducts(ctx, shipmentID)
	if err != nil {
		s.logger.Warn("reconciliation scan skipped, products unavailable",
			zap.String("shipment_id", shipmentID), zap.Error(err))
		return nil
	}

	entries, err := s.source.ListEntries(ctx, shipmentID)
	if err != nil {
		s.logger.Warn("reconciliation scan skipped, entries unavailable",
			zap.String("shipment_id", shipmentID), zap.Error(err))
		return nil
	}

	reports := MismatchesFromSnapshot(shipmentID, products, entries, s.now())
	if len(reports) > 0 {
		s.logger.Info("reconciliation mismatches found",
			zap.String("shipment_id", shipmentID), zap.Int("count", len(reports)))
	}
	return reports
}

// MismatchesFromSnapshot compares each product's required total against the
// summed declared totals of its entries. Pure; products with no entries at
// all are still compared (a fully unallocated product is a mismatch of its
// whole requirement).
func MismatchesFromSnapshot(shipmentID string, products []models.Product, entries []models.CodeListEntry, detectedAt time.Time) []models.MismatchReport {
	allocatedByProduct := make(map[string]float64, len(products))
	for _, entry := range entries {
		allocatedByProduct[entry.ProductID] += entry.DeclaredTotal
	}

	var reports []models.MismatchReport
	for _, product := range products {
		allocated := allocatedByProduct[product.ID]
		diff := product.RequiredTotal - allocated
		if math.Abs(diff) <= quantityEpsilon {
			continue
		}
		reports = append(reports, models.MismatchReport{
			ShipmentID:     shipmentID,
			ProductID:      product.ID,
			ProductCode:    product.ProductCode,
			RequiredTotal:  product.RequiredTotal,
			AllocatedTotal: allocated,
			Difference:     diff,
			DetectedAt:     detectedAt,
		})
	}
	return reports
}
