// Package api exposes classification and discovery over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/database"
	"github.com/StreetLamp05/glassgov-be/internal/discover"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// Analyzer classifies text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts classifier.Options) *domain.ClassificationResult
}

// Explainer lists the rules that fired for text.
type Explainer interface {
	Explain(text string) []classifier.RuleHit
}

// Discoverer runs discovery and topic listing.
type Discoverer interface {
	Discover(ctx context.Context, req discover.Request) (*domain.DiscoverResult, error)
	Topics(ctx context.Context, city, category string, limit int) ([]domain.GovernmentAction, error)
}

// RuleStore persists classification rules.
type RuleStore interface {
	Create(ctx context.Context, rule *domain.ClassificationRule) error
	List(ctx context.Context, enabledOnly bool) ([]domain.ClassificationRule, error)
	Delete(ctx context.Context, id int) error
	SetEnabled(ctx context.Context, id int, enabled bool) error
}

// RuleReloader pushes stored rules into the live matcher.
type RuleReloader interface {
	Reload(ctx context.Context) error
}

// Handler handles HTTP requests for the GlassGov API.
type Handler struct {
	analyzer   Analyzer
	explainer  Explainer
	discoverer Discoverer
	rules      RuleStore
	reloader   RuleReloader
	defaults   classifier.Options
	logger     infralogger.Logger
}

// NewHandler creates a handler. rules and reloader may be nil when no
// database is configured; the rule endpoints are then not registered.
func NewHandler(
	analyzer Analyzer,
	explainer Explainer,
	discoverer Discoverer,
	rules RuleStore,
	reloader RuleReloader,
	defaults classifier.Options,
	logger infralogger.Logger,
) *Handler {
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &Handler{
		analyzer:   analyzer,
		explainer:  explainer,
		discoverer: discoverer,
		rules:      rules,
		reloader:   reloader,
		defaults:   defaults,
		logger:     logger,
	}
}

// Analyze handles POST /api/v1/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := req.options(h.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.analyzer.Analyze(c.Request.Context(), req.Text, opts)
	resp := AnalyzeResponse{ClassificationResult: result}
	if opts.Debug && h.explainer != nil {
		resp.RuleHits = h.explainer.Explain(req.Text)
	}
	c.JSON(http.StatusOK, resp)
}

// Discover handles POST /api/v1/discover
func (h *Handler) Discover(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.discoverer.Discover(c.Request.Context(), discover.Request{
		Geo:         req.Geo,
		Message:     req.Message,
		Categories:  req.Categories,
		PerCategory: req.Limits.PerCategory,
	})
	if errors.Is(err, discover.ErrMissingGeography) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		infralogger.FromContext(c.Request.Context()).Error("Discover failed", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "discover failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Labels handles GET /api/v1/labels
func (h *Handler) Labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": domain.AllLabels()})
}

// Topics handles GET /api/v1/topics
func (h *Handler) Topics(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	items, err := h.discoverer.Topics(c.Request.Context(), c.Query("city"), c.Query("category"), limit)
	if errors.Is(err, domain.ErrUnknownLabel) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		infralogger.FromContext(c.Request.Context()).Error("Topics failed", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "topics failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListRules handles GET /api/v1/rules
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.rules.List(c.Request.Context(), c.Query("enabled") == "true")
	if err != nil {
		infralogger.FromContext(c.Request.Context()).Error("Failed to list rules", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, RulesListResponse{Rules: rules, Total: len(rules)})
}

// CreateRule handles POST /api/v1/rules
func (h *Handler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := req.toRule()
	if err := classifier.ValidateRule(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.rules.Create(c.Request.Context(), &rule); err != nil {
		infralogger.FromContext(c.Request.Context()).Error("Failed to create rule", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create rule"})
		return
	}

	h.reload(c)
	c.JSON(http.StatusCreated, rule)
}

// DeleteRule handles DELETE /api/v1/rules/:id
func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := ruleID(c)
	if !ok {
		return
	}
	if err := h.rules.Delete(c.Request.Context(), id); err != nil {
		h.ruleWriteError(c, err)
		return
	}

	h.reload(c)
	c.Status(http.StatusNoContent)
}

// SetRuleEnabled handles PATCH /api/v1/rules/:id
func (h *Handler) SetRuleEnabled(c *gin.Context) {
	id, ok := ruleID(c)
	if !ok {
		return
	}
	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.rules.SetEnabled(c.Request.Context(), id, *req.Enabled); err != nil {
		h.ruleWriteError(c, err)
		return
	}

	h.reload(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": *req.Enabled})
}

func ruleID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) ruleWriteError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrRuleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	infralogger.FromContext(c.Request.Context()).Error("Rule update failed", infralogger.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "rule update failed"})
}

// reload refreshes the live matcher. The write already succeeded, so a
// failure is only logged; the periodic refresh catches up.
func (h *Handler) reload(c *gin.Context) {
	if h.reloader == nil {
		return
	}
	if err := h.reloader.Reload(c.Request.Context()); err != nil {
		infralogger.FromContext(c.Request.Context()).Warn("Rule reload failed", infralogger.Error(err))
	}
}
