package config

import (
	"fmt"
	"os"
	"runtime"

	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultDetectorBinary = "detect-secrets"
	DefaultThreads        = 10
)

// NewDefaultConfig returns a config with all defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		Detector: Detector{
			Binary:  DefaultDetectorBinary,
			Workers: runtime.GOMAXPROCS(0),
		},
		Sweep: Sweep{
			Threads: DefaultThreads,
		},
	}
}

// LoadConfig reads the YAML config at configPath and fills unset fields with
// defaults. A missing file is not an error unless the path was explicitly
// requested; the caller signals that with required.
func LoadConfig(configPath string, required bool) (*Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if required {
			return nil, fmt.Errorf("config file %q does not exist", configPath)
		}
		return config, nil
	}

	if err := loadYAML(configPath, config); err != nil {
		return nil, err
	}

	config.Detector.Binary = SetThen(config.Detector.Binary, DefaultDetectorBinary)
	config.Detector.Workers = SetThen(config.Detector.Workers, runtime.GOMAXPROCS(0))
	config.Sweep.Threads = SetThen(config.Sweep.Threads, DefaultThreads)

	return config, nil
}

func loadYAML(configPath string, data interface{}) error {
	if err := validateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", configPath, err)
	}

	return nil
}

func validateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}
