package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portal-service/internal/models"
	"portal-service/internal/observability"
	"portal-service/internal/repositories"
	"portal-service/internal/telemetry"
)

// CreditHandler manages the credit balance and metered tool sessions.
type CreditHandler struct {
	credits repositories.CreditRepository
	audit   *telemetry.AuditEmitter
}

// NewCreditHandler builds a CreditHandler.
func NewCreditHandler(credits repositories.CreditRepository, audit *telemetry.AuditEmitter) *CreditHandler {
	return &CreditHandler{credits: credits, audit: audit}
}

func (h *CreditHandler) emitAudit(c *gin.Context, action, detail string) {
	h.audit.Emit(c.Request.Context(), action, detail, requestIDFromContext(c), userIDFromContext(c))
}

// ListTools returns the tool catalogue with per-session costs.
func (h *CreditHandler) ListTools(c *gin.Context) {
	tools, err := h.credits.ListTools(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tools"})
		return
	}
	if tools == nil {
		tools = []models.Tool{}
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

// GetBalance returns the caller's credit balance.
func (h *CreditHandler) GetBalance(c *gin.Context) {
	credit, err := h.credits.GetBalance(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}
	c.JSON(http.StatusOK, credit)
}

// Purchase tops up the caller's balance. Payment capture happens upstream;
// this endpoint only credits the confirmed amount.
func (h *CreditHandler) Purchase(c *gin.Context) {
	var req struct {
		Amount int `json:"amount" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	credit, err := h.credits.AddCredits(c.Request.Context(), c.GetInt("userID"), req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add credits"})
		return
	}

	h.emitAudit(c, "credits.purchase", strconv.Itoa(req.Amount))
	c.JSON(http.StatusOK, credit)
}

// StartSession opens a metered session against the tool's credit cost.
func (h *CreditHandler) StartSession(c *gin.Context) {
	toolID, err := strconv.Atoi(c.Param("tool_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tool id"})
		return
	}

	session, err := h.credits.StartSession(c.Request.Context(), c.GetInt("userID"), toolID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrToolNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
		case errors.Is(err, repositories.ErrInsufficientCredits):
			// The client routes this to the purchase flow.
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient credits", "action": "purchase_credits"})
		case errors.Is(err, repositories.ErrSessionActive):
			c.JSON(http.StatusConflict, gin.H{"error": "a session is already active"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
		}
		return
	}

	observability.IncToolSessionActive()
	h.emitAudit(c, "tool.session.start", strconv.Itoa(toolID))
	c.JSON(http.StatusCreated, session)
}

// StopSession closes the caller's active session.
func (h *CreditHandler) StopSession(c *gin.Context) {
	session, err := h.credits.StopSession(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not stop session"})
		return
	}

	observability.DecToolSessionActive()
	h.emitAudit(c, "tool.session.stop", strconv.Itoa(session.ToolID))
	c.JSON(http.StatusOK, session)
}

// GetActiveSession returns the caller's active session, if any.
func (h *CreditHandler) GetActiveSession(c *gin.Context) {
	session, err := h.credits.ActiveSession(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, session)
}
