package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPath string // .hcl file or directory of .hcl files

	// ExportDir and StorePath override the job file's values when set.
	ExportDir string
	StorePath string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.JobPath == "" {
		return nil, errors.New("JobPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
