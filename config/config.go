// Package config loads the optional pi rc file (~/.pirc.yaml by
// default). Every setting has a working default, so running without an
// rc file is the normal case.
package config

// Config represents the complete pi shell configuration
type Config struct {
	Prompt      string            `yaml:"prompt"`       // Base prompt text shown before the navigation path (default: "pi")
	SampleSize  int               `yaml:"sample_size"`  // Elements realized per container when previewing a value (default: 3)
	HistoryFile string            `yaml:"history_file"` // Readline history location (default: .pi_history in the temp dir)
	Locale      string            `yaml:"locale"`       // Locale for datefmt and numfmt when none is given (e.g. "fr_FR")
	SQL         map[string]string `yaml:"sql"`          // Named connection strings usable as the first argument to sql()
}

// Defaults returns a Config with all default values set
func Defaults() *Config {
	return &Config{
		Prompt:     "pi",
		SampleSize: 3,
	}
}
