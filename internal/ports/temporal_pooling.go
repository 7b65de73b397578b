package ports

import (
	"context"

	"github.com/htm-project/cortical-region/internal/domain/htm"
)

// TemporalPoolingService defines the interface for driving a cortical
// region's combined spatial + temporal pooling cycle one step at a time.
type TemporalPoolingService interface {
	// ProcessStep runs one RunOnce over the given input vector.
	ProcessStep(ctx context.Context, input *htm.RegionStepInput) (*htm.RegionStepResult, error)

	// GetConfiguration returns the current region configuration.
	GetConfiguration(ctx context.Context) (*htm.TemporalPoolerConfig, error)

	// GetMetrics returns the region's current performance metrics.
	GetMetrics(ctx context.Context) (*htm.TemporalPoolerMetrics, error)

	// ResetMetrics clears accumulated accuracy/duty-cycle tracking by
	// reconstructing the underlying region from its current configuration.
	ResetMetrics(ctx context.Context) error

	// ValidateConfiguration validates a region configuration without
	// constructing a region from it.
	ValidateConfiguration(ctx context.Context, config *htm.TemporalPoolerConfig) error

	// HealthCheck performs a health check on the region.
	HealthCheck(ctx context.Context) error

	// GetInstanceInfo returns region instance information.
	GetInstanceInfo(ctx context.Context) map[string]interface{}
}

// TemporalPoolingEngine defines the core region computation engine as seen
// by the service layer, decoupled from the concrete region package.
type TemporalPoolingEngine interface {
	// RunOnce advances the region by one time step using whatever input
	// vector was most recently loaded via SetInput.
	RunOnce() error

	// SetInput loads the next input vector.
	SetInput(bits []int) error

	// NumColumns returns the column count.
	NumColumns() int

	// ActiveColumns returns the indices of columns active at the current step.
	ActiveColumns() []int

	// PredictedColumns returns the indices of columns with at least one
	// predicting cell at the current step.
	PredictedColumns() []int

	// LastAccuracy returns (activation accuracy, prediction accuracy) for
	// the step just run.
	LastAccuracy() (float64, float64)

	// Metrics returns a full metrics snapshot.
	Metrics() *htm.TemporalPoolerMetrics

	// Iterations returns the number of completed RunOnce calls.
	Iterations() int64
}

// TemporalPoolingObserver defines the interface for monitoring region
// processing operations.
type TemporalPoolingObserver interface {
	OnStepStarted(inputID string, input *htm.RegionStepInput)
	OnStepCompleted(inputID string, result *htm.RegionStepResult)
	OnStepFailed(inputID string, err error)
	OnConfigurationChanged(oldConfig, newConfig *htm.TemporalPoolerConfig)
	OnMetricsUpdated(metrics *htm.TemporalPoolerMetrics)
}
