package config

// Config is the root of the optional YAML configuration file.
type Config struct {
	Logger   Logger   `yaml:"logger"`
	Detector Detector `yaml:"detector"`
	Sweep    Sweep    `yaml:"sweep"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Detector configures the external secret-detection tool invocation.
type Detector struct {
	Binary         string   `yaml:"binary"`
	AdditionalArgs []string `yaml:"additional_args"`
	Workers        int      `yaml:"workers"`
}

// Sweep holds defaults for the sweep command that flags may override.
type Sweep struct {
	Threads int `yaml:"threads"`
}
