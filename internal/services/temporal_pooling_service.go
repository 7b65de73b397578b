package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/htm-project/cortical-region/internal/cortical/region"
	"github.com/htm-project/cortical-region/internal/domain/htm"
	"github.com/htm-project/cortical-region/internal/infrastructure/validation"
	"github.com/htm-project/cortical-region/internal/ports"
)

// configValidator runs the struct-tag pass (field presence/range) ahead of
// TemporalPoolerConfig's hand-written cross-field Validate().
var configValidator = validation.New()

// temporalPoolingService implements the TemporalPoolingService interface
type temporalPoolingService struct {
	mu               sync.RWMutex
	engine           *region.Region
	delegated        *region.DelegatedSpatialPooler
	config           *htm.TemporalPoolerConfig
	observers        []ports.TemporalPoolingObserver
	instanceID       string
	createdAt        time.Time
	lastProcessingAt time.Time
}

// NewTemporalPoolingService creates a new temporal pooling service wrapping
// a fresh cortical region built from config. When config.SpatialPoolerConfig
// is set, the region runs in delegated-spatial mode: a DelegatedSpatialPooler
// drives the region from the full gonum-backed spatial pooler instead of the
// region's own trained-mode pooler.
func NewTemporalPoolingService(config *htm.TemporalPoolerConfig, instanceID string) (ports.TemporalPoolingService, error) {
	if config == nil {
		config = htm.DefaultTemporalPoolerConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	svc := &temporalPoolingService{
		config:     config,
		observers:  make([]ports.TemporalPoolingObserver, 0),
		instanceID: instanceID,
		createdAt:  time.Now(),
	}

	if config.SpatialPoolerConfig != nil {
		delegated, err := region.NewDelegatedSpatialPooler(config.SpatialPoolerConfig, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create delegated spatial pooler: %w", err)
		}
		svc.delegated = delegated
		svc.engine = delegated.Region()
		return svc, nil
	}

	engine, err := region.NewRegion(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create region: %w", err)
	}
	svc.engine = engine
	return svc, nil
}

// ProcessStep runs one RunOnce over the given input vector.
func (s *temporalPoolingService) ProcessStep(ctx context.Context, input *htm.RegionStepInput) (*htm.RegionStepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input == nil || len(input.Bits) == 0 {
		err := fmt.Errorf("input bits must not be empty")
		s.notifyStepFailed("", err)
		return nil, err
	}

	select {
	case <-ctx.Done():
		err := ctx.Err()
		s.notifyStepFailed(input.InputID, err)
		return nil, err
	default:
	}

	inputID := input.InputID
	if inputID == "" {
		inputID = uuid.NewString()
	}

	s.notifyStepStarted(inputID, input)

	start := time.Now()
	if s.delegated != nil {
		activeBits := make([]int, 0, len(input.Bits))
		for i, bit := range input.Bits {
			if bit != 0 {
				activeBits = append(activeBits, i)
			}
		}
		if _, err := s.delegated.RunOnce(len(input.Bits), activeBits, s.config.SpatialLearning); err != nil {
			s.notifyStepFailed(inputID, err)
			return nil, fmt.Errorf("delegated spatial pooling failed: %w", err)
		}
	} else {
		if err := s.engine.SetInput(input.Bits); err != nil {
			s.notifyStepFailed(inputID, err)
			return nil, fmt.Errorf("failed to set input: %w", err)
		}
		if err := s.engine.RunOnce(); err != nil {
			s.notifyStepFailed(inputID, err)
			return nil, fmt.Errorf("temporal pooling failed: %w", err)
		}
	}
	elapsed := time.Since(start)

	activation, prediction := s.engine.LastAccuracy()
	result := &htm.RegionStepResult{
		InputID:            inputID,
		Iteration:          s.engine.Iterations(),
		ActiveColumns:      s.engine.ActiveColumns(),
		PredictedColumns:   s.engine.PredictedColumns(),
		ActivationAccuracy: activation,
		PredictionAccuracy: prediction,
		ProcessingTimeMs:   float64(elapsed.Microseconds()) / 1000.0,
	}

	s.lastProcessingAt = time.Now()
	s.notifyStepCompleted(inputID, result)

	return result, nil
}

// GetConfiguration returns the current region configuration.
func (s *temporalPoolingService) GetConfiguration(ctx context.Context) (*htm.TemporalPoolerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configCopy := *s.config
	return &configCopy, nil
}

// GetMetrics returns the region's current performance metrics.
func (s *temporalPoolingService) GetMetrics(ctx context.Context) (*htm.TemporalPoolerMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := s.engine.Metrics()
	s.notifyMetricsUpdated(metrics)
	return metrics, nil
}

// ResetMetrics rebuilds the region (and, in delegated mode, the spatial
// pooler driving it) from the current configuration, which discards all
// duty-cycle/accuracy history (the region has no separate metrics-only
// reset since duty cycles are intrinsic to column state).
func (s *temporalPoolingService) ResetMetrics(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.SpatialPoolerConfig != nil {
		delegated, err := region.NewDelegatedSpatialPooler(s.config.SpatialPoolerConfig, s.config)
		if err != nil {
			return fmt.Errorf("failed to reset delegated spatial pooler: %w", err)
		}
		s.delegated = delegated
		s.engine = delegated.Region()
		return nil
	}

	engine, err := region.NewRegion(s.config)
	if err != nil {
		return fmt.Errorf("failed to reset region: %w", err)
	}
	s.engine = engine
	return nil
}

// ValidateConfiguration validates a region configuration: struct-tag field
// rules first (so callers get a field-by-field report), then the business
// rules Validate() enforces across fields.
func (s *temporalPoolingService) ValidateConfiguration(ctx context.Context, config *htm.TemporalPoolerConfig) error {
	if errs := configValidator.Validate(config); errs != nil {
		return errs
	}
	return config.Validate()
}

// HealthCheck reports whether the service has a live region and a
// configuration that still passes validation. It deliberately stops short of
// running a step: HealthCheck is expected to be polled frequently, and a real
// RunOnce would perturb iteration counts and duty-cycle metrics on every
// poll.
func (s *temporalPoolingService) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.engine == nil {
		return fmt.Errorf("region engine is not initialized")
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}
	return nil
}

// GetInstanceInfo returns region instance information.
func (s *temporalPoolingService) GetInstanceInfo(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := map[string]interface{}{
		"instance_id":        s.instanceID,
		"created_at":         s.createdAt,
		"last_processing_at": s.lastProcessingAt,
		"uptime_seconds":     time.Since(s.createdAt).Seconds(),
		"configuration": map[string]interface{}{
			"col_grid_width":     s.config.ColGridWidth,
			"col_grid_height":    s.config.ColGridHeight,
			"cells_per_col":      s.config.CellsPerCol,
			"hardcoded_spatial":  s.config.HardcodedSpatial,
			"spatial_learning":   s.config.SpatialLearning,
			"temporal_learning":  s.config.TemporalLearning,
		},
		"observer_count": len(s.observers),
		"iterations":     s.engine.Iterations(),
	}

	return info
}

// AddObserver adds a processing observer.
func (s *temporalPoolingService) AddObserver(observer ports.TemporalPoolingObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// RemoveObserver removes a processing observer.
func (s *temporalPoolingService) RemoveObserver(observer ports.TemporalPoolingObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obs := range s.observers {
		if obs == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			break
		}
	}
}

func (s *temporalPoolingService) notifyStepStarted(inputID string, input *htm.RegionStepInput) {
	for _, observer := range s.observers {
		observer.OnStepStarted(inputID, input)
	}
}

func (s *temporalPoolingService) notifyStepCompleted(inputID string, result *htm.RegionStepResult) {
	for _, observer := range s.observers {
		observer.OnStepCompleted(inputID, result)
	}
}

func (s *temporalPoolingService) notifyStepFailed(inputID string, err error) {
	for _, observer := range s.observers {
		observer.OnStepFailed(inputID, err)
	}
}

func (s *temporalPoolingService) notifyMetricsUpdated(metrics *htm.TemporalPoolerMetrics) {
	for _, observer := range s.observers {
		observer.OnMetricsUpdated(metrics)
	}
}

// TemporalPoolingServiceFactory creates temporal pooling services.
type TemporalPoolingServiceFactory struct{}

// NewTemporalPoolingServiceFactory creates a new service factory.
func NewTemporalPoolingServiceFactory() *TemporalPoolingServiceFactory {
	return &TemporalPoolingServiceFactory{}
}

// CreateService creates a temporal pooling service.
func (f *TemporalPoolingServiceFactory) CreateService(config *htm.TemporalPoolerConfig, instanceID string) (ports.TemporalPoolingService, error) {
	return NewTemporalPoolingService(config, instanceID)
}

// CreateDefaultService creates a temporal pooling service with default configuration.
func (f *TemporalPoolingServiceFactory) CreateDefaultService(instanceID string) (ports.TemporalPoolingService, error) {
	return NewTemporalPoolingService(htm.DefaultTemporalPoolerConfig(), instanceID)
}

// ValidateServiceConfiguration validates service configuration.
func (f *TemporalPoolingServiceFactory) ValidateServiceConfiguration(config *htm.TemporalPoolerConfig) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	return config.Validate()
}
