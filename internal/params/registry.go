package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// environmentFile is one environment's block in the YAML file.
type environmentFile struct {
	Imbalance     *Imbalance     `yaml:"imbalance"`
	MeanReversion *MeanReversion `yaml:"mean_reversion"`
	WickCapture   *WickCapture   `yaml:"wick_capture"`
}

// configFile is the top-level YAML structure: a block per environment.
type configFile struct {
	Environments map[string]environmentFile `yaml:"environments"`
}

// Registry holds the validated parameter sets for one environment.
// Construction fails on any missing or invalid set; trading never
// starts with unvalidated parameters.
type Registry struct {
	env           string
	imbalance     Imbalance
	meanReversion MeanReversion
	wickCapture   WickCapture
}

// Load reads the YAML file and validates the block for env.
func Load(path, env string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}
	return Parse(data, env)
}

// Parse builds a Registry from raw YAML.
func Parse(data []byte, env string) (*Registry, error) {
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}

	block, ok := file.Environments[env]
	if !ok {
		return nil, fmt.Errorf("params: environment %q not found", env)
	}
	if block.Imbalance == nil {
		return nil, fmt.Errorf("params: %s set missing for environment %q", StrategyImbalance, env)
	}
	if block.MeanReversion == nil {
		return nil, fmt.Errorf("params: %s set missing for environment %q", StrategyMeanReversion, env)
	}
	if block.WickCapture == nil {
		return nil, fmt.Errorf("params: %s set missing for environment %q", StrategyWickCapture, env)
	}

	if err := block.Imbalance.Validate(); err != nil {
		return nil, err
	}
	if err := block.MeanReversion.Validate(); err != nil {
		return nil, err
	}
	if err := block.WickCapture.Validate(); err != nil {
		return nil, err
	}

	return &Registry{
		env:           env,
		imbalance:     *block.Imbalance,
		meanReversion: *block.MeanReversion,
		wickCapture:   *block.WickCapture,
	}, nil
}

func (r *Registry) Environment() string { return r.env }

func (r *Registry) Imbalance() Imbalance         { return r.imbalance }
func (r *Registry) MeanReversion() MeanReversion { return r.meanReversion }
func (r *Registry) WickCapture() WickCapture     { return r.wickCapture }
