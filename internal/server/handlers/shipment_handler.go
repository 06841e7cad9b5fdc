package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/domain/models"
	"github.com/aquaexport/seatrace/internal/repository/mongodb"
	"github.com/aquaexport/seatrace/internal/service/shipment"
)

// ShipmentHandler adapts the orchestration service to HTTP for everything
// shipment-scoped: session selection, balances, code list entries, product
// creation and reconciliation.
type ShipmentHandler struct {
	svc     *shipment.Service
	history mongodb.Repository
	logger  *zap.Logger
}

// NewShipmentHandler constructs the HTTP handler adapter.
func NewShipmentHandler(svc *shipment.Service, history mongodb.Repository, logger *zap.Logger) *ShipmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentHandler{svc: svc, history: history, logger: logger}
}

// SelectShipment makes a shipment current for the session.
func (h *ShipmentHandler) SelectShipment(c *gin.Context) {
	var req struct {
		ShipmentID string `json:"shipment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shipment_id is required"})
		return
	}

	selected, err := h.svc.SelectShipment(c.Request.Context(), req.ShipmentID)
	if err != nil {
		h.writeError(c, "select shipment", err)
		return
	}
	c.JSON(http.StatusOK, selected)
}

// CurrentShipment returns the session's selected shipment.
func (h *ShipmentHandler) CurrentShipment(c *gin.Context) {
	current, ok := h.svc.CurrentShipment()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no shipment selected"})
		return
	}
	c.JSON(http.StatusOK, current)
}

// Balance returns the quantity ledger for one product. The optional
// exclude_entry query parameter names an entry under edit.
func (h *ShipmentHandler) Balance(c *gin.Context) {
	balance, err := h.svc.Balance(c.Request.Context(), c.Param("productID"), c.Query("exclude_entry"))
	if err != nil {
		h.writeError(c, "compute balance", err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// ValidateEntry dry-runs the allocation validation for a candidate entry.
func (h *ShipmentHandler) ValidateEntry(c *gin.Context) {
	entry, ok := h.bindEntry(c)
	if !ok {
		return
	}

	result, err := h.svc.ValidateEntry(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, "validate entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": result.Ok(), "violations": result.Violations})
}

// CreateEntry validates and persists a new code list entry.
func (h *ShipmentHandler) CreateEntry(c *gin.Context) {
	entry, ok := h.bindEntry(c)
	if !ok {
		return
	}
	entry.ID = ""

	balance, err := h.svc.SaveEntry(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, "create entry", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"balance": balance})
}

// UpdateEntry validates and persists changes to an existing entry.
func (h *ShipmentHandler) UpdateEntry(c *gin.Context) {
	entry, ok := h.bindEntry(c)
	if !ok {
		return
	}
	entry.ID = c.Param("entryID")

	balance, err := h.svc.SaveEntry(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, "update entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// DeleteEntry removes a code list entry.
func (h *ShipmentHandler) DeleteEntry(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("id"), c.Param("entryID")); err != nil {
		h.writeError(c, "delete entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateProduct runs the two-step product save.
func (h *ShipmentHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product payload"})
		return
	}
	product.ShipmentID = c.Param("id")

	created, err := h.svc.CreateProductWithGrades(c.Request.Context(), product)
	if err != nil {
		h.writeError(c, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Reconcile runs an on-demand scan and returns the findings.
func (h *ShipmentHandler) Reconcile(c *gin.Context) {
	reports := h.svc.ScanShipment(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"mismatches": reports})
}

// ReconcileHistory returns stored findings from past scheduled sweeps.
func (h *ShipmentHandler) ReconcileHistory(c *gin.Context) {
	reports, err := h.history.ListMismatchReports(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		h.logger.Error("failed loading reconcile history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mismatches": reports})
}

func (h *ShipmentHandler) bindEntry(c *gin.Context) (models.CodeListEntry, bool) {
	var entry models.CodeListEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry payload"})
		return models.CodeListEntry{}, false
	}
	entry.ShipmentID = c.Param("id")
	return entry, true
}

func (h *ShipmentHandler) writeError(c *gin.Context, op string, err error) {
	writeError(c, h.logger, op, err)
}

// writeError maps the error taxonomy onto HTTP responses: validation
// failures are the user's to fix, partial writes must say what persisted,
// and transport errors pass the backend's verdict through.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"violations": validationErr.Violations})
		return
	}

	var partialErr *models.PartialWriteError
	if errors.As(err, &partialErr) {
		logger.Error("partial write", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":        partialErr.Error(),
			"parent_saved": true,
			"parent_id":    partialErr.ParentID,
		})
		return
	}

	var transportErr *models.TransportError
	if errors.As(err, &transportErr) {
		logger.Error("backend call failed", zap.String("op", op), zap.Error(err))
		switch {
		case transportErr.IsDuplicate():
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate record on backend"})
		case transportErr.IsNotFound():
			c.JSON(http.StatusNotFound, gin.H{"error": "referenced record not found on backend"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable, please retry"})
		}
		return
	}

	logger.Error("request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
