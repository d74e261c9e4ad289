package ranking

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadCalibration_DefaultFile tests loading the shipped calibration file.
func TestLoadCalibration_DefaultFile(t *testing.T) {
	configPath := filepath.Join("..", "..", "configs", "ranking.calibration.json")
	weights, err := LoadCalibration(configPath)
	if err != nil {
		t.Fatalf("expected no error loading default calibration file, got: %v", err)
	}

	if *weights != *DefaultWeights() {
		t.Errorf("shipped calibration should match defaults:\nloaded: %+v\ndefaults: %+v",
			weights, DefaultWeights())
	}
}

// TestLoadCalibration_EmptyPath tests loading with empty file path.
func TestLoadCalibration_EmptyPath(t *testing.T) {
	weights, err := LoadCalibration("")
	if err != nil {
		t.Errorf("expected no error with empty path, got: %v", err)
	}
	if *weights != *DefaultWeights() {
		t.Errorf("expected default weights, got %+v", weights)
	}
}

func writeCalibration(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}
	return path
}

func TestLoadCalibration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, w *Weights)
	}{
		{
			name:    "partial override",
			content: `{"version":"1","weights":{"username":{"prefix":95},"user_id":5}}`,
			check: func(t *testing.T, w *Weights) {
				if w.Username.Prefix != 95 {
					t.Errorf("username prefix = %d, want 95", w.Username.Prefix)
				}
				if w.Username.Exact != 100 || w.Username.Substring != 60 {
					t.Errorf("untouched username tiers changed: %+v", w.Username)
				}
				if w.DisplayName != DefaultWeights().DisplayName {
					t.Errorf("display name changed: %+v", w.DisplayName)
				}
				if w.UserID != 5 {
					t.Errorf("user id = %d, want 5", w.UserID)
				}
			},
		},
		{
			name:    "non-positive values ignored",
			content: `{"weights":{"display_name":{"exact":0,"prefix":-10}}}`,
			check: func(t *testing.T, w *Weights) {
				if *w != *DefaultWeights() {
					t.Errorf("expected defaults, got %+v", w)
				}
			},
		},
		{
			name:    "invalid json",
			content: `{"weights":`,
			wantErr: true,
			check: func(t *testing.T, w *Weights) {
				if *w != *DefaultWeights() {
					t.Errorf("expected defaults on parse failure, got %+v", w)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights, err := LoadCalibration(writeCalibration(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadCalibration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if weights == nil {
				t.Fatal("weights must never be nil")
			}
			tt.check(t, weights)
		})
	}
}

func TestLoadCalibration_MissingFile(t *testing.T) {
	weights, err := LoadCalibration(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if *weights != *DefaultWeights() {
		t.Error("should return defaults when file doesn't exist")
	}
}

func TestMergeCalibration_NilInputs(t *testing.T) {
	if got := MergeCalibration(nil, &Weights{UserID: 7}); *got != *DefaultWeights() {
		t.Errorf("nil base should yield defaults, got %+v", got)
	}

	base := DefaultWeights()
	got := MergeCalibration(base, nil)
	if *got != *base {
		t.Errorf("nil override should copy base, got %+v", got)
	}
	got.UserID = 1
	if base.UserID == 1 {
		t.Error("MergeCalibration must not alias the base weights")
	}
}
