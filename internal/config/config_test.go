package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// TestLoad_DefaultsApplyWithoutConfigFile verifies Load() succeeds on
// defaults alone when no gasoline.yaml is present.
func TestLoad_DefaultsApplyWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxBodySize != 1<<20 {
		t.Errorf("max_body_size = %d, want default 1MiB", cfg.MaxBodySize)
	}
	if !cfg.ApiDiff.CompareRequestBodies {
		t.Error("api_diff.compare_request_bodies should default true")
	}
	if cfg.VisualDiff.DiffThreshold != 1 {
		t.Errorf("visual_diff.diff_threshold = %v, want 1", cfg.VisualDiff.DiffThreshold)
	}
}

func TestLoad_YamlFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
max_body_size: 2048
api_diff:
  strict: true
dom_diff:
  compare_styles: true
`
	if err := os.WriteFile(filepath.Join(dir, "gasoline.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxBodySize != 2048 {
		t.Errorf("max_body_size = %d, want 2048 from file", cfg.MaxBodySize)
	}
	if !cfg.ApiDiff.Strict {
		t.Error("api_diff.strict should be true from file")
	}
	if !cfg.DomDiff.CompareStyles {
		t.Error("dom_diff.compare_styles should be true from file")
	}
}

func TestLoad_EnvVarOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	t.Setenv("GASOLINE_MAX_BODY_SIZE", "4096")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxBodySize != 4096 {
		t.Errorf("max_body_size = %d, want 4096 from env", cfg.MaxBodySize)
	}
}

func TestValidate_RejectsNegativeMaxBodySize(t *testing.T) {
	cfg := &Config{MaxBodySize: -1, StorePath: "x", VisualDiff: VisualDiffSection{Threshold: 0.1, DiffThreshold: 1}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for negative max_body_size")
	}
}

func TestValidate_RejectsOutOfRangeVisualThreshold(t *testing.T) {
	cfg := &Config{StorePath: "x", VisualDiff: VisualDiffSection{Threshold: 1.5, DiffThreshold: 1}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for out-of-range visual threshold")
	}
}

func TestValidate_RejectsEmptyStorePath(t *testing.T) {
	cfg := &Config{VisualDiff: VisualDiffSection{Threshold: 0.1, DiffThreshold: 1}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error for empty store_path")
	}
}

func TestTapConfig_ProjectsSharedFields(t *testing.T) {
	cfg := &Config{MaxBodySize: 99, IgnorePatterns: []string{"x"}, CaptureRequestBody: true}
	tc := cfg.TapConfig()
	if tc.MaxBodySize != 99 || len(tc.IgnorePatterns) != 1 || !tc.CaptureRequestBody {
		t.Fatalf("got %+v", tc)
	}
}

// Guard against viper's singleton GetViper() state leaking between tests
// in this package (each test in here uses viper.New(), but this keeps the
// intent explicit for future additions).
func TestMain_UsesIsolatedViperInstances(t *testing.T) {
	if viper.GetString("max_body_size") == "2048" {
		t.Fatal("package-level viper singleton must not be touched by Load()")
	}
}
