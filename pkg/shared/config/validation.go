package config

import "fmt"

// ValidateConfig checks invariants that cannot be expressed in the YAML schema.
func ValidateConfig(config *Config) error {
	if config.Detector.Workers < 0 {
		return fmt.Errorf("detector.workers must not be negative, got %d", config.Detector.Workers)
	}
	if config.Sweep.Threads < 0 {
		return fmt.Errorf("sweep.threads must not be negative, got %d", config.Sweep.Threads)
	}
	return nil
}
