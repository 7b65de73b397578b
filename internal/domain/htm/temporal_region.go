package htm

import "fmt"

// RegionErrorType categorizes an error raised by the temporal-pooler core.
type RegionErrorType string

const (
	RegionErrorConfiguration RegionErrorType = "configuration_error"
	RegionErrorInputShape    RegionErrorType = "input_shape_error"
	RegionErrorProcessing    RegionErrorType = "processing_error"
)

// RegionError is the typed, JSON-serializable error returned by the region
// core and surfaced through the temporal pooler service/handler layers.
type RegionError struct {
	ErrorType   RegionErrorType `json:"error_type"`
	Message     string          `json:"message"`
	ConfigField string          `json:"config_field,omitempty"`
}

func (e *RegionError) Error() string {
	if e.ConfigField != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.ErrorType, e.Message, e.ConfigField)
	}
	return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
}

// NewRegionConfigError builds a configuration-validation error tied to a
// specific field.
func NewRegionConfigError(field, message string) *RegionError {
	return &RegionError{ErrorType: RegionErrorConfiguration, Message: message, ConfigField: field}
}

// NewRegionError builds an untargeted region error of the given type.
func NewRegionError(errType RegionErrorType, message string) *RegionError {
	return &RegionError{ErrorType: errType, Message: message}
}

// TemporalPoolerConfig is the construction surface of a cortical region:
// column-grid geometry, proximal-connectivity ratios, cell/segment layout,
// and the learning toggles spec'd for the core's spatial and temporal
// pooling phases.
type TemporalPoolerConfig struct {
	InputWidth  int `json:"input_width" validate:"required,gt=0"`
	InputHeight int `json:"input_height" validate:"required,gt=0"`

	ColGridWidth  int `json:"col_grid_width" validate:"required,gt=0"`
	ColGridHeight int `json:"col_grid_height" validate:"required,gt=0"`

	PctInputPerCol   float64 `json:"pct_input_per_col" validate:"gte=0,lte=1"`
	PctMinOverlap    float64 `json:"pct_min_overlap" validate:"gte=0,lte=1"`
	LocalityRadius   int     `json:"locality_radius" validate:"gte=0"`
	PctLocalActivity float64 `json:"pct_local_activity" validate:"gte=0,lte=1"`

	CellsPerCol        int `json:"cells_per_col" validate:"required,gt=0"`
	SegActiveThreshold int `json:"seg_active_threshold" validate:"required,gt=0"`
	NewSynapseCount    int `json:"new_synapse_count" validate:"gte=0"`

	SpatialLearning  bool `json:"spatial_learning"`
	TemporalLearning bool `json:"temporal_learning"`
	HardcodedSpatial bool `json:"hardcoded_spatial"`

	// Seed drives the region's single PRNG: reservoir-tail sampling of
	// learning cells and (in trained mode) the Gaussian locality-biased
	// permanence initialization. With Parallel off, same seed and same
	// input sequence -> same run, which is what the replay tests rely on;
	// with Parallel on, the draw order follows goroutine scheduling.
	Seed int64 `json:"seed"`

	// FullDefaultSpatialPermanence, when true, initializes every proximal
	// synapse at the connected permanence instead of sampling a
	// locality-biased value (useful for hardcoded-adjacent experiments
	// where learning is off and connectivity should just match wiring).
	FullDefaultSpatialPermanence bool `json:"full_default_spatial_permanence"`

	// SpatialPoolerConfig, when set, routes this region through the full
	// overlap/inhibition/boosting spatial pooler instead of the region's
	// own lightweight trained-mode pooler: the service builds a
	// DelegatedSpatialPooler and feeds it raw encoder active bits every
	// step, with the delegated pooler's active columns becoming this
	// region's input. Requires HardcodedSpatial and a matching ColumnCount.
	SpatialPoolerConfig *SpatialPoolerConfig `json:"spatial_pooler_config,omitempty"`

	PermanenceInc float64 `json:"permanence_inc" validate:"gte=0,lte=1"`
	PermanenceDec float64 `json:"permanence_dec" validate:"gte=0,lte=1"`

	// Parallel enables barrier-synchronized per-column/per-cell sharding
	// within a single RunOnce. Off by default: RunOnce is already cheap
	// enough sequentially for typical grid sizes, and determinism is
	// easiest to reason about single-threaded.
	Parallel bool `json:"parallel"`
}

// DefaultTemporalPoolerConfig returns a small, fully wired configuration
// suitable for tests and local experimentation.
func DefaultTemporalPoolerConfig() *TemporalPoolerConfig {
	return &TemporalPoolerConfig{
		InputWidth:                   32,
		InputHeight:                  32,
		ColGridWidth:                 32,
		ColGridHeight:                32,
		PctInputPerCol:               0.5,
		PctMinOverlap:                0.1,
		LocalityRadius:               0,
		PctLocalActivity:             0.05,
		CellsPerCol:                  4,
		SegActiveThreshold:           3,
		NewSynapseCount:              5,
		SpatialLearning:              true,
		TemporalLearning:             true,
		HardcodedSpatial:             false,
		Seed:                         42,
		FullDefaultSpatialPermanence: false,
		PermanenceInc:                0.015,
		PermanenceDec:                0.005,
		Parallel:                     false,
	}
}

// NumColumns returns the total column count implied by the grid dimensions.
func (c *TemporalPoolerConfig) NumColumns() int {
	return c.ColGridWidth * c.ColGridHeight
}

// NumInputBits returns the total input length implied by the input dimensions.
func (c *TemporalPoolerConfig) NumInputBits() int {
	return c.InputWidth * c.InputHeight
}

// Validate checks the cross-field business rules that struct tags alone
// can't express: hardcoded-mode equality of input length and column count and the
// conditional requirement on pct_input_per_col.
func (c *TemporalPoolerConfig) Validate() error {
	if c.CellsPerCol < 1 {
		return NewRegionConfigError("cells_per_col", "cells per column must be >= 1")
	}
	if c.ColGridWidth <= 0 || c.ColGridHeight <= 0 {
		return NewRegionConfigError("col_grid", "column grid must have positive width and height")
	}
	if c.SegActiveThreshold < 1 {
		return NewRegionConfigError("seg_active_threshold", "segment activation threshold must be >= 1")
	}
	if c.NewSynapseCount < 0 {
		return NewRegionConfigError("new_synapse_count", "must be >= 0")
	}
	if c.SpatialPoolerConfig != nil {
		if !c.HardcodedSpatial {
			return NewRegionConfigError("spatial_pooler_config", "delegated spatial pooling requires hardcoded_spatial")
		}
		if c.SpatialPoolerConfig.ColumnCount != c.NumColumns() {
			return NewRegionConfigError("spatial_pooler_config", fmt.Sprintf(
				"spatial pooler column_count (%d) must equal region column grid area (%d)",
				c.SpatialPoolerConfig.ColumnCount, c.NumColumns()))
		}
	}
	if c.HardcodedSpatial {
		if c.NumInputBits() != c.NumColumns() {
			return NewRegionConfigError("input_width", fmt.Sprintf(
				"hardcoded spatial requires input length (%d) to equal column count (%d)",
				c.NumInputBits(), c.NumColumns()))
		}
		return nil
	}
	if c.PctInputPerCol <= 0 || c.PctInputPerCol > 1 {
		return NewRegionConfigError("pct_input_per_col", "must be in (0, 1] when spatial pooling is not hardcoded")
	}
	return nil
}

// TemporalPoolerMetrics summarizes a region's recent activity, mirroring the
// shape of SpatialPoolerMetrics but over the combined spatial+temporal cycle.
type TemporalPoolerMetrics struct {
	Iteration         int64   `json:"iteration"`
	ActiveColumns     int     `json:"active_columns"`
	PredictedColumns  int     `json:"predicted_columns"`
	ActivationAccuracy float64 `json:"activation_accuracy"`
	PredictionAccuracy float64 `json:"prediction_accuracy"`
	MeanOverlap       float64 `json:"mean_overlap"`
	OverlapVariance   float64 `json:"overlap_variance"`
	MeanBoost         float64 `json:"mean_boost"`
	InhibitionRadius  float64 `json:"inhibition_radius"`
	NumSegments       int     `json:"num_segments"`
	SegmentsByStep    map[int]int `json:"segments_by_step"`
}

// RegionStepInput is the per-call input to the temporal pooler's process
// endpoint: a single binary input vector for one RunOnce.
type RegionStepInput struct {
	InputID string `json:"input_id,omitempty"`
	Bits    []int  `json:"bits" validate:"required,min=1,dive,oneof=0 1"`
}

// RegionStepResult reports the outcome of a single RunOnce, including the
// per-column/per-cell state a caller needs to drive the next prediction.
type RegionStepResult struct {
	InputID          string    `json:"input_id,omitempty"`
	Iteration        int64     `json:"iteration"`
	ActiveColumns    []int     `json:"active_columns"`
	PredictedColumns []int     `json:"predicted_columns"`
	ActivationAccuracy float64 `json:"activation_accuracy"`
	PredictionAccuracy float64 `json:"prediction_accuracy"`
	ProcessingTimeMs float64   `json:"processing_time_ms"`
}
