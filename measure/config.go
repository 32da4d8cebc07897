package measure

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.viam.com/utils"
)

// Config tunes both strategies plus the per-slot plausibility windows.
type Config struct {
	// Slice strategy: gating and band placement. Band fractions measure
	// down from the top of the skeleton's vertical extent.
	MinValidPoints int     `json:"min_valid_points"`
	MinBandPoints  int     `json:"min_band_points"`
	BandTolerance  float64 `json:"band_tolerance"`
	WaistFraction  float64 `json:"waist_fraction"`
	ChestFraction  float64 `json:"chest_fraction"`
	HipsFraction   float64 `json:"hips_fraction"`
	ThighFraction  float64 `json:"thigh_fraction"`
	ArmFraction    float64 `json:"arm_fraction"`

	// Proportion strategy.
	MaxRefHeightCm       float64 `json:"max_ref_height_cm"`
	MaskThreshold        float64 `json:"mask_threshold"`
	ThighExpansionFactor float64 `json:"thigh_expansion_factor"`

	// Plausibility windows, centimeters. Girths bound the slice strategy,
	// widths and lengths bound the proportion strategy.
	WaistRange      Range `json:"waist_range"`
	ChestRange      Range `json:"chest_range"`
	HipsRange       Range `json:"hips_range"`
	ThighGirthRange Range `json:"thigh_girth_range"`
	ArmGirthRange   Range `json:"arm_girth_range"`

	ShoulderWidthRange Range `json:"shoulder_width_range"`
	HipWidthRange      Range `json:"hip_width_range"`
	NeckWidthRange     Range `json:"neck_width_range"`
	ArmLengthRange     Range `json:"arm_length_range"`
	LegLengthRange     Range `json:"leg_length_range"`
	UpperBodyRange     Range `json:"upper_body_range"`
	LowerBodyRange     Range `json:"lower_body_range"`
	ThighWidthRange    Range `json:"thigh_width_range"`
}

// DefaultConfig returns the measurement tuning used in production.
func DefaultConfig() Config {
	return Config{
		MinValidPoints: 10,
		MinBandPoints:  5,
		BandTolerance:  0.05,
		WaistFraction:  0.50,
		ChestFraction:  0.25,
		HipsFraction:   0.60,
		ThighFraction:  0.70,
		ArmFraction:    0.30,

		MaxRefHeightCm:       300,
		MaskThreshold:        0.5,
		ThighExpansionFactor: 1.5,

		WaistRange:      Range{Min: 50, Max: 150},
		ChestRange:      Range{Min: 60, Max: 160},
		HipsRange:       Range{Min: 60, Max: 160},
		ThighGirthRange: Range{Min: 30, Max: 90},
		ArmGirthRange:   Range{Min: 15, Max: 60},

		ShoulderWidthRange: Range{Min: 30, Max: 60},
		HipWidthRange:      Range{Min: 20, Max: 60},
		NeckWidthRange:     Range{Min: 8, Max: 25},
		ArmLengthRange:     Range{Min: 40, Max: 90},
		LegLengthRange:     Range{Min: 60, Max: 130},
		UpperBodyRange:     Range{Min: 40, Max: 90},
		LowerBodyRange:     Range{Min: 60, Max: 130},
		ThighWidthRange:    Range{Min: 8, Max: 40},
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
	if config.MinValidPoints < 1 {
		return utils.NewConfigValidationError(path, errors.New("min_valid_points should be >= 1"))
	}
	if config.MinBandPoints < 5 {
		return utils.NewConfigValidationError(path, errors.New("min_band_points should be >= 5 to fit a conic"))
	}
	if config.BandTolerance <= 0 || config.BandTolerance >= 1 {
		return utils.NewConfigValidationError(path, errors.New("band_tolerance should be in (0, 1)"))
	}
	for name, v := range map[string]float64{
		"waist_fraction": config.WaistFraction,
		"chest_fraction": config.ChestFraction,
		"hips_fraction":  config.HipsFraction,
		"thigh_fraction": config.ThighFraction,
		"arm_fraction":   config.ArmFraction,
	} {
		if v <= 0 || v >= 1 {
			return utils.NewConfigValidationError(path, errors.New(name+" should be in (0, 1)"))
		}
	}
	if config.MaxRefHeightCm <= 0 {
		return utils.NewConfigValidationError(path, errors.New("max_ref_height_cm should be positive"))
	}
	if config.MaskThreshold <= 0 || config.MaskThreshold >= 1 {
		return utils.NewConfigValidationError(path, errors.New("mask_threshold should be in (0, 1)"))
	}
	if config.ThighExpansionFactor <= 0 {
		return utils.NewConfigValidationError(path, errors.New("thigh_expansion_factor should be positive"))
	}
	for name, r := range map[string]Range{
		"waist_range":          config.WaistRange,
		"chest_range":          config.ChestRange,
		"hips_range":           config.HipsRange,
		"thigh_girth_range":    config.ThighGirthRange,
		"arm_girth_range":      config.ArmGirthRange,
		"shoulder_width_range": config.ShoulderWidthRange,
		"hip_width_range":      config.HipWidthRange,
		"neck_width_range":     config.NeckWidthRange,
		"arm_length_range":     config.ArmLengthRange,
		"leg_length_range":     config.LegLengthRange,
		"upper_body_range":     config.UpperBodyRange,
		"lower_body_range":     config.LowerBodyRange,
		"thigh_width_range":    config.ThighWidthRange,
	} {
		if r.Min < 0 || r.Max <= r.Min {
			return utils.NewConfigValidationError(path,
				fmt.Errorf("%s should have 0 <= min < max, got [%v, %v]", name, r.Min, r.Max))
		}
	}
	return nil
}
