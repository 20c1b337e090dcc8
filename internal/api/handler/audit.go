package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kpiauditor/internal/api/middleware"
	"kpiauditor/internal/engine"
)

// AuditHandler handles the audit lifecycle endpoints.
type AuditHandler struct {
	store  *engine.Store
	runner *engine.Runner
}

// NewAuditHandler creates a new audit handler.
// Parameters:
//   - store: audit persistence layer.
//   - runner: background audit executor.
// Returns:
//   - *AuditHandler: initialized handler.
func NewAuditHandler(store *engine.Store, runner *engine.Runner) *AuditHandler {
	return &AuditHandler{store: store, runner: runner}
}

type startAuditRequest struct {
	CollegeName string `json:"college_name"`
}

// StartAudit creates a new audit and launches it in the background.
// POST /api/audit/start
func (h *AuditHandler) StartAudit(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req startAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	collegeName := strings.TrimSpace(req.CollegeName)
	if collegeName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "college_name must not be empty"})
		return
	}

	id := uuid.New().String()
	if err := h.store.Create(id, collegeName); err != nil {
		log.WithError(err).Error("Failed to create audit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create audit"})
		return
	}
	h.runner.Launch(id, collegeName)

	log.WithAuditID(id).WithCollege(collegeName).Info("Audit accepted")
	c.JSON(http.StatusOK, gin.H{
		"audit_id": id,
		"status":   "processing",
		"message":  "Audit started for " + collegeName,
	})
}

// GetAudit returns the full snapshot of an audit.
// GET /api/audit/:id
func (h *AuditHandler) GetAudit(c *gin.Context) {
	id := c.Param("id")
	job, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit not found"})
			return
		}
		middleware.GetLogger(c).WithError(err).WithAuditID(id).Error("Failed to load audit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// CancelAudit requests cancellation of a running audit. Cancelling an audit
// that already reached a terminal state answers 409 with a structured reason
// so clients can treat the race as benign.
// POST /api/audit/:id/cancel
func (h *AuditHandler) CancelAudit(c *gin.Context) {
	id := c.Param("id")
	log := middleware.GetLogger(c).WithAuditID(id)

	// Stop the runner first so no further progress lands, then flip the
	// stored status. Either side may lose the race; the store decides.
	h.runner.Cancel(id)

	err := h.store.Cancel(id)
	switch {
	case err == nil:
		log.Info("Audit cancelled")
		c.JSON(http.StatusOK, gin.H{"id": id, "message": "Cancellation requested"})
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "audit not found"})
	case errors.Is(err, engine.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error":  "audit already in a terminal state",
			"reason": "already_terminal",
		})
	default:
		log.WithError(err).Error("Failed to cancel audit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel audit"})
	}
}

// ListAudits returns the most recent audits, newest first.
// GET /api/audits
func (h *AuditHandler) ListAudits(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := h.store.List(limit)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to list audits")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"audits": entries,
		"count":  len(entries),
	})
}

// DeleteAudit removes an audit from history.
// DELETE /api/audit/:id
func (h *AuditHandler) DeleteAudit(c *gin.Context) {
	id := c.Param("id")

	// A running audit must stop before its record disappears.
	h.runner.Cancel(id)

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit not found"})
			return
		}
		middleware.GetLogger(c).WithError(err).WithAuditID(id).Error("Failed to delete audit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete audit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "message": "Audit deleted"})
}

// ListKPIs returns the KPI schema the engine audits against.
// GET /api/kpis
func (h *AuditHandler) ListKPIs(c *gin.Context) {
	schema := engine.Schema()
	kpis := make([]gin.H, 0, len(schema))
	for _, kpi := range schema {
		kpis = append(kpis, gin.H{
			"kpi_name": kpi.Name,
			"category": kpi.Category,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"kpis":  kpis,
		"count": len(kpis),
	})
}
