package bodymesh

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.viam.com/utils"
)

// Config carries every tunable the builder uses. The sizing fractions are
// empirical approximations of human proportions; none of them are derived,
// so they all live here rather than as literals.
type Config struct {
	// Tessellation resolution for every solid.
	Rings   int `json:"rings"`
	Sectors int `json:"sectors"`

	// Input gating.
	MinSkeletonSize int `json:"min_skeleton_size"`
	MinValidPoints  int `json:"min_valid_points"`

	// Bulk solid sizing. Head radius is a fraction of the nose to
	// shoulder-midpoint distance, stretched vertically; torso and pelvis
	// width come from the shoulder and hip spans.
	HeadRadiusFraction   float64 `json:"head_radius_fraction"`
	HeadVerticalStretch  float64 `json:"head_vertical_stretch"`
	TorsoWidthFraction   float64 `json:"torso_width_fraction"`
	TorsoDepthRatio      float64 `json:"torso_depth_ratio"`
	PelvisWidthFraction  float64 `json:"pelvis_width_fraction"`
	PelvisHeightFraction float64 `json:"pelvis_height_fraction"`
	PelvisDepthRatio     float64 `json:"pelvis_depth_ratio"`

	// Limb radii as fractions of each limb's own length.
	NeckRadiusFraction     float64 `json:"neck_radius_fraction"`
	ThighRadiusFraction    float64 `json:"thigh_radius_fraction"`
	ShinRadiusFraction     float64 `json:"shin_radius_fraction"`
	UpperArmRadiusFraction float64 `json:"upper_arm_radius_fraction"`
	ForearmRadiusFraction  float64 `json:"forearm_radius_fraction"`

	// Unit normalization. A model whose largest extent exceeds
	// CentimeterExtent is assumed to be in centimeters; one below
	// MinUnitExtent is rescaled to TargetHeightM meters.
	DegenerateExtent float64 `json:"degenerate_extent"`
	CentimeterExtent float64 `json:"centimeter_extent"`
	MinUnitExtent    float64 `json:"min_unit_extent"`
	TargetHeightM    float64 `json:"target_height_m"`
}

// DefaultConfig returns the builder tuning used in production.
func DefaultConfig() Config {
	return Config{
		Rings:                  8,
		Sectors:                16,
		MinSkeletonSize:        15,
		MinValidPoints:         10,
		HeadRadiusFraction:     0.4,
		HeadVerticalStretch:    1.2,
		TorsoWidthFraction:     0.5,
		TorsoDepthRatio:        0.6,
		PelvisWidthFraction:    0.6,
		PelvisHeightFraction:   0.4,
		PelvisDepthRatio:       0.7,
		NeckRadiusFraction:     0.15,
		ThighRadiusFraction:    0.12,
		ShinRadiusFraction:     0.10,
		UpperArmRadiusFraction: 0.10,
		ForearmRadiusFraction:  0.08,
		DegenerateExtent:       1e-6,
		CentimeterExtent:       100,
		MinUnitExtent:          1,
		TargetHeightM:          1.5,
	}
}

// LoadConfig loads a Config from a json file.
func LoadConfig(file string) (*Config, error) {
	var config Config
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(configFile.Close)
	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(file); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate ensures all parts of the Config are valid.
func (config *Config) Validate(path string) error {
	if config.Rings < 2 {
		return utils.NewConfigValidationError(path, errors.New("rings should be >= 2"))
	}
	if config.Sectors < 3 {
		return utils.NewConfigValidationError(path, errors.New("sectors should be >= 3"))
	}
	if config.MinSkeletonSize < 1 {
		return utils.NewConfigValidationError(path, errors.New("min_skeleton_size should be >= 1"))
	}
	if config.MinValidPoints < 1 {
		return utils.NewConfigValidationError(path, errors.New("min_valid_points should be >= 1"))
	}
	for name, v := range map[string]float64{
		"head_radius_fraction":      config.HeadRadiusFraction,
		"head_vertical_stretch":     config.HeadVerticalStretch,
		"torso_width_fraction":      config.TorsoWidthFraction,
		"torso_depth_ratio":         config.TorsoDepthRatio,
		"pelvis_width_fraction":     config.PelvisWidthFraction,
		"pelvis_height_fraction":    config.PelvisHeightFraction,
		"pelvis_depth_ratio":        config.PelvisDepthRatio,
		"neck_radius_fraction":      config.NeckRadiusFraction,
		"thigh_radius_fraction":     config.ThighRadiusFraction,
		"shin_radius_fraction":      config.ShinRadiusFraction,
		"upper_arm_radius_fraction": config.UpperArmRadiusFraction,
		"forearm_radius_fraction":   config.ForearmRadiusFraction,
	} {
		if v <= 0 {
			return utils.NewConfigValidationError(path, errors.New(name+" should be positive"))
		}
	}
	if config.DegenerateExtent <= 0 {
		return utils.NewConfigValidationError(path, errors.New("degenerate_extent should be positive"))
	}
	if config.CentimeterExtent <= config.MinUnitExtent {
		return utils.NewConfigValidationError(path,
			errors.New("centimeter_extent should be greater than min_unit_extent"))
	}
	if config.TargetHeightM <= 0 {
		return utils.NewConfigValidationError(path, errors.New("target_height_m should be positive"))
	}
	return nil
}
