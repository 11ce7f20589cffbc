package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValidation_SampleSize(t *testing.T) {
	yamlData := `
sample_size: 0
`
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(yamlData), cfg); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	err := validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sample_size 0")
	}
	if err.Error() != "configuration errors:\n  - invalid sample_size: 0 (must be at least 1)" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestValidation_NegativeSampleSize(t *testing.T) {
	cfg := Defaults()
	cfg.SampleSize = -2

	if err := validate(cfg); err == nil {
		t.Error("Expected validation error for negative sample_size")
	}
}

func TestValidation_EmptySQLConnection(t *testing.T) {
	yamlData := `
sql:
  main: ""
`
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(yamlData), cfg); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	err := validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for empty connection string")
	}
	if !strings.Contains(err.Error(), "sql.main: connection string is empty") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestValidation_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.SampleSize = 0
	cfg.SQL = map[string]string{"main": "   "}

	err := validate(cfg)
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if !strings.Contains(err.Error(), "invalid sample_size") {
		t.Errorf("Expected sample_size error in: %v", err)
	}
	if !strings.Contains(err.Error(), "sql.main") {
		t.Errorf("Expected sql error in: %v", err)
	}
}

func TestValidation_ValidConfig(t *testing.T) {
	yamlData := `
prompt: data
sample_size: 10
sql:
  main: "sqlite:./app.db"
`
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(yamlData), cfg); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if err := validate(cfg); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}
