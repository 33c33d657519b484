package params

import "fmt"

// Strategy tags the parameter set for one analyzer. Lookups are keyed
// by this tag rather than by free-form name, so a missing or mistyped
// strategy is caught at startup.
type Strategy string

const (
	StrategyImbalance     Strategy = "imbalance"
	StrategyMeanReversion Strategy = "mean_reversion"
	StrategyWickCapture   Strategy = "wick_capture"
)

// Imbalance configures the order-book imbalance analyzer.
type Imbalance struct {
	DepthLevels      int     `yaml:"depth_levels"`
	MinTotalVolume   float64 `yaml:"min_total_volume"`
	MaxSpreadBps     float64 `yaml:"max_spread_bps"`
	MinImbalance     float64 `yaml:"min_imbalance"`
	TriggerImbalance float64 `yaml:"trigger_imbalance"`
	OrderNotional    float64 `yaml:"order_notional"`
}

func (p Imbalance) Validate() error {
	if p.DepthLevels <= 0 {
		return fmt.Errorf("imbalance: depth_levels must be positive, got %d", p.DepthLevels)
	}
	if p.MinTotalVolume < 0 {
		return fmt.Errorf("imbalance: min_total_volume must not be negative")
	}
	if p.MaxSpreadBps <= 0 {
		return fmt.Errorf("imbalance: max_spread_bps must be positive")
	}
	if p.MinImbalance < 0 || p.MinImbalance > 1 {
		return fmt.Errorf("imbalance: min_imbalance must be in [0,1], got %v", p.MinImbalance)
	}
	if p.TriggerImbalance <= 0 || p.TriggerImbalance > 1 {
		return fmt.Errorf("imbalance: trigger_imbalance must be in (0,1], got %v", p.TriggerImbalance)
	}
	if p.OrderNotional <= 0 {
		return fmt.Errorf("imbalance: order_notional must be positive")
	}
	return nil
}

// MeanReversion configures the VWAP-reversion analyzer.
type MeanReversion struct {
	Window         int     `yaml:"window"`
	MinZScore      float64 `yaml:"min_z_score"`
	TriggerZScore  float64 `yaml:"trigger_z_score"`
	MinVolumeRatio float64 `yaml:"min_volume_ratio"`
	StopOffsetBps  float64 `yaml:"stop_offset_bps"`
	OrderNotional  float64 `yaml:"order_notional"`
}

func (p MeanReversion) Validate() error {
	if p.Window <= 0 || p.Window > 200 {
		return fmt.Errorf("mean_reversion: window must be in (0,200], got %d", p.Window)
	}
	if p.MinZScore <= 0 {
		return fmt.Errorf("mean_reversion: min_z_score must be positive")
	}
	if p.TriggerZScore <= 0 {
		return fmt.Errorf("mean_reversion: trigger_z_score must be positive")
	}
	if p.MinVolumeRatio <= 0 {
		return fmt.Errorf("mean_reversion: min_volume_ratio must be positive")
	}
	if p.StopOffsetBps <= 0 {
		return fmt.Errorf("mean_reversion: stop_offset_bps must be positive")
	}
	if p.OrderNotional <= 0 {
		return fmt.Errorf("mean_reversion: order_notional must be positive")
	}
	return nil
}

// WickCapture configures the wick-capture analyzer.
type WickCapture struct {
	Window            int     `yaml:"window"`
	MinWickRatio      float64 `yaml:"min_wick_ratio"`
	MinVolumeSpike    float64 `yaml:"min_volume_spike"`
	WickSizeThreshold float64 `yaml:"wick_size_threshold"`
	RequireOBIConfirm bool    `yaml:"require_obi_confirm"`
	OBIConfirm        float64 `yaml:"obi_confirm_threshold"`
	StopPaddingBps    float64 `yaml:"stop_padding_bps"`
	OrderNotional     float64 `yaml:"order_notional"`
}

func (p WickCapture) Validate() error {
	if p.Window <= 0 || p.Window > 50 {
		return fmt.Errorf("wick_capture: window must be in (0,50], got %d", p.Window)
	}
	if p.MinWickRatio <= 0 {
		return fmt.Errorf("wick_capture: min_wick_ratio must be positive")
	}
	if p.MinVolumeSpike <= 0 {
		return fmt.Errorf("wick_capture: min_volume_spike must be positive")
	}
	if p.WickSizeThreshold <= 0 {
		return fmt.Errorf("wick_capture: wick_size_threshold must be positive")
	}
	if p.RequireOBIConfirm && (p.OBIConfirm <= 0 || p.OBIConfirm >= 1) {
		return fmt.Errorf("wick_capture: obi_confirm_threshold must be in (0,1) when confirmation is required")
	}
	if p.StopPaddingBps < 0 {
		return fmt.Errorf("wick_capture: stop_padding_bps must not be negative")
	}
	if p.OrderNotional <= 0 {
		return fmt.Errorf("wick_capture: order_notional must be positive")
	}
	return nil
}
