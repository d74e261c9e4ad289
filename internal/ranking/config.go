package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configurations
}

// LoadCalibration loads search weights from a JSON calibration file.
// If the file doesn't exist or can't be parsed, returns default weights with an error.
// Partial configurations are merged with defaults for graceful degradation.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights.
// Only positive values from the override are applied, so a file can tune a
// single tier without restating the rest.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}

	result := *base
	if override == nil {
		return &result
	}

	result.Username = mergeField(result.Username, override.Username)
	result.DisplayName = mergeField(result.DisplayName, override.DisplayName)
	if override.UserID > 0 {
		result.UserID = override.UserID
	}

	return &result
}

func mergeField(base, override FieldWeights) FieldWeights {
	if override.Exact > 0 {
		base.Exact = override.Exact
	}
	if override.Prefix > 0 {
		base.Prefix = override.Prefix
	}
	if override.Substring > 0 {
		base.Substring = override.Substring
	}
	return base
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	overrides = appendFieldOverrides(overrides, "username", defaults.Username, loaded.Username)
	overrides = appendFieldOverrides(overrides, "display_name", defaults.DisplayName, loaded.DisplayName)
	if loaded.UserID != defaults.UserID {
		overrides = append(overrides, fmt.Sprintf("user_id: %d -> %d", defaults.UserID, loaded.UserID))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}

func appendFieldOverrides(out []string, field string, def, loaded FieldWeights) []string {
	if loaded.Exact != def.Exact {
		out = append(out, fmt.Sprintf("%s.exact: %d -> %d", field, def.Exact, loaded.Exact))
	}
	if loaded.Prefix != def.Prefix {
		out = append(out, fmt.Sprintf("%s.prefix: %d -> %d", field, def.Prefix, loaded.Prefix))
	}
	if loaded.Substring != def.Substring {
		out = append(out, fmt.Sprintf("%s.substring: %d -> %d", field, def.Substring, loaded.Substring))
	}
	return out
}
