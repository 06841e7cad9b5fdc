package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

// Source provides the product and entry snapshots a balance is computed
// from. Satisfied by the export API client.
type Source interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListEntriesByProduct(ctx context.Context, productID string) ([]models.CodeListEntry, error)
}

// Ledger computes per-product carton balances from backend snapshots. It
// holds no state; every computation re-reads the persisted rows, so repeated
// calls over the same snapshot always agree.
type Ledger struct {
	source Source
	logger *zap.Logger
}

// New wires a ledger over the given snapshot source.
func New(source Source, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{source: source, logger: logger}
}

// ComputeBalance fetches the product and its code list entries and derives
// the remaining allocatable quantity. excludeEntryID names an entry being
// edited so it does not count against itself; pass "" for creates.
//
// A failed product fetch is an error, never a zero requirement: guessing
// would let an allocation through against a requirement we could not read.
func (l *Ledger) ComputeBalance(ctx context.Context, productID, excludeEntryID string) (models.Balance, error) {
	product, err := l.source.GetProduct(ctx, productID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("product requirement unavailable, save blocked: %w", err)
	}

	entries, err := l.source.ListEntriesByProduct(ctx, productID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("existing allocations unavailable, save blocked: %w", err)
	}

	balance := BalanceFromSnapshot(*product, entries, excludeEntryID)
	l.logger.Debug("balance computed",
		zap.String("product_id", productID),
		zap.Float64("required", balance.Required),
		zap.Float64("allocated", balance.Allocated),
		zap.Float64("available", balance.Available))

	return balance, nil
}

// BalanceFromSnapshot derives a balance from already-fetched rows. Pure;
// entries belonging to other products are ignored so callers may pass a
// whole-shipment listing.
func BalanceFromSnapshot(product models.Product, entries []models.CodeListEntry, excludeEntryID string) models.Balance {
	var allocated float64
	for _, entry := range entries {
		if entry.ProductID != product.ID {
			continue
		}
		if excludeEntryID != "" && entry.ID == excludeEntryID {
			continue
		}
		allocated += entry.DeclaredTotal
	}

	return models.Balance{
		Required:  product.RequiredTotal,
		Allocated: allocated,
		Available: product.RequiredTotal - allocated,
	}
}
