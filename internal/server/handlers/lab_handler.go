package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aquaexport/seatrace/internal/domain/models"
	"github.com/aquaexport/seatrace/internal/service/shipment"
)

// LabHandler exposes the temporal validators and lab record saves.
type LabHandler struct {
	svc    *shipment.Service
	logger *zap.Logger
}

// NewLabHandler constructs the lab record HTTP adapter.
func NewLabHandler(svc *shipment.Service, logger *zap.Logger) *LabHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabHandler{svc: svc, logger: logger}
}

// ValidateDates dry-runs the date-window checks for a candidate record.
func (h *LabHandler) ValidateDates(c *gin.Context) {
	record, ok := h.bindRecord(c)
	if !ok {
		return
	}

	result, err := h.svc.ValidateLabDates(c.Request.Context(), record)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": result.Ok(), "violations": result.Violations})
}

// Create gates a lab record save behind the temporal validators.
func (h *LabHandler) Create(c *gin.Context) {
	record, ok := h.bindRecord(c)
	if !ok {
		return
	}

	saved, err := h.svc.SaveLabRecord(c.Request.Context(), record)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *LabHandler) bindRecord(c *gin.Context) (models.LabRecord, bool) {
	var record models.LabRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		h.logger.Warn("invalid lab record payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lab record payload"})
		return models.LabRecord{}, false
	}
	return record, true
}

func (h *LabHandler) writeError(c *gin.Context, err error) {
	writeError(c, h.logger, "lab record", err)
}
