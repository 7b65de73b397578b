package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/htm-project/cortical-region/internal/domain/htm"
	"github.com/htm-project/cortical-region/internal/ports"
)

// TemporalPoolerHandler handles HTTP requests for region (spatial +
// temporal pooling) operations.
type TemporalPoolerHandler struct {
	temporalPoolingService ports.TemporalPoolingService
}

// NewTemporalPoolerHandler creates a new temporal pooler HTTP handler.
func NewTemporalPoolerHandler(temporalPoolingService ports.TemporalPoolingService) *TemporalPoolerHandler {
	return &TemporalPoolerHandler{
		temporalPoolingService: temporalPoolingService,
	}
}

// ProcessTemporalPooler handles POST /api/v1/region/process requests.
func (h *TemporalPoolerHandler) ProcessTemporalPooler(c *gin.Context) {
	var request RegionProcessRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if len(request.Bits) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "bits must not be empty",
		})
		return
	}

	stepInput := &htm.RegionStepInput{
		InputID: request.InputID,
		Bits:    request.Bits,
	}

	result, err := h.temporalPoolingService.ProcessStep(c.Request.Context(), stepInput)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Region processing failed",
			"details": err.Error(),
		})
		return
	}

	response := RegionProcessResponse{
		InputID:            result.InputID,
		Iteration:          result.Iteration,
		ActiveColumns:      result.ActiveColumns,
		PredictedColumns:   result.PredictedColumns,
		ActivationAccuracy: result.ActivationAccuracy,
		PredictionAccuracy: result.PredictionAccuracy,
		ProcessingTimeMs:   result.ProcessingTimeMs,
	}

	c.JSON(http.StatusOK, response)
}

// GetTemporalPoolerConfig handles GET /api/v1/region/config requests.
func (h *TemporalPoolerHandler) GetTemporalPoolerConfig(c *gin.Context) {
	config, err := h.temporalPoolingService.GetConfiguration(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get configuration",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, config)
}

// GetTemporalPoolerMetrics handles GET /api/v1/region/metrics requests.
func (h *TemporalPoolerHandler) GetTemporalPoolerMetrics(c *gin.Context) {
	metrics, err := h.temporalPoolingService.GetMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get metrics",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// ResetTemporalPoolerMetrics handles POST /api/v1/region/metrics/reset requests.
func (h *TemporalPoolerHandler) ResetTemporalPoolerMetrics(c *gin.Context) {
	if err := h.temporalPoolingService.ResetMetrics(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reset metrics",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Metrics reset successfully",
	})
}

// GetTemporalPoolerHealth handles GET /api/v1/region/health requests.
func (h *TemporalPoolerHandler) GetTemporalPoolerHealth(c *gin.Context) {
	if err := h.temporalPoolingService.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	info := h.temporalPoolingService.GetInstanceInfo(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"info":   info,
	})
}

// GetTemporalPoolerStatus handles GET /api/v1/region/status requests.
func (h *TemporalPoolerHandler) GetTemporalPoolerStatus(c *gin.Context) {
	info := h.temporalPoolingService.GetInstanceInfo(c.Request.Context())

	config, err := h.temporalPoolingService.GetConfiguration(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get region configuration",
			"details": err.Error(),
		})
		return
	}

	metrics, err := h.temporalPoolingService.GetMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get region metrics",
			"details": err.Error(),
		})
		return
	}

	isHealthy := true
	var healthError string
	if err := h.temporalPoolingService.HealthCheck(c.Request.Context()); err != nil {
		isHealthy = false
		healthError = err.Error()
	}

	status := gin.H{
		"status":        "operational",
		"healthy":       isHealthy,
		"instance":      info,
		"configuration": config,
		"metrics":       metrics,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
	if !isHealthy {
		status["health_error"] = healthError
		status["status"] = "degraded"
	}

	c.JSON(http.StatusOK, status)
}

// ValidateConfigRequest handles POST /api/v1/region/config/validate requests.
func (h *TemporalPoolerHandler) ValidateConfigRequest(c *gin.Context) {
	var config htm.TemporalPoolerConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if err := h.temporalPoolingService.ValidateConfiguration(c.Request.Context(), &config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// RegionProcessRequest is the HTTP-facing request body for one RunOnce call.
type RegionProcessRequest struct {
	InputID string `json:"input_id,omitempty"`
	Bits    []int  `json:"bits" binding:"required"`
}

// RegionProcessResponse is the HTTP-facing response body for one RunOnce call.
type RegionProcessResponse struct {
	InputID            string  `json:"input_id,omitempty"`
	Iteration           int64   `json:"iteration"`
	ActiveColumns      []int   `json:"active_columns"`
	PredictedColumns   []int   `json:"predicted_columns"`
	ActivationAccuracy float64 `json:"activation_accuracy"`
	PredictionAccuracy float64 `json:"prediction_accuracy"`
	ProcessingTimeMs   float64 `json:"processing_time_ms"`
}
