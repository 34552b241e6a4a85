package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape for aria.yaml.
type fileConfig struct {
	AgentID               string `yaml:"agent_id"`
	SettingsSalt          string `yaml:"settings_salt"`
	ActionPlanningEnabled bool   `yaml:"action_planning_enabled"`
	ProviderConcurrency   int    `yaml:"provider_concurrency"`
	TrajectoryLogPath     string `yaml:"trajectory_log_path"`
	OTLPEndpoint          string `yaml:"otlp_endpoint"`
}

func loadConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
