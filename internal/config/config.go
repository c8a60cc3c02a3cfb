// Package config loads and validates the YAML configuration shared by the
// observer and controller binaries (spec.md §6).
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// EventsConfig is the events.* block.
type EventsConfig struct {
	Sink             string `yaml:"sink"`
	SampleIntervalMs int    `yaml:"sample_interval_ms"`
	PostgresDSN      string `yaml:"postgres_dsn,omitempty"`
}

// MetricsConfig is the metrics.* block.
type MetricsConfig struct {
	SamplesSink string `yaml:"samples_sink"`
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
}

// MLConfig is the ml.* block.
type MLConfig struct {
	ModelPath string `yaml:"model_path,omitempty"`
}

// rawContainer mirrors model.ContainerSpec but lets the YAML key become the
// container name instead of a field.
type rawContainer struct {
	CgroupPath string           `yaml:"cgroup_path"`
	CPU        model.CPUSpec    `yaml:"cpu"`
	Memory     model.MemorySpec `yaml:"memory"`
	IO         model.IOSpec     `yaml:"io"`
}

// Config is the top-level configuration document.
type Config struct {
	Events     EventsConfig            `yaml:"events"`
	Metrics    MetricsConfig           `yaml:"metrics"`
	ML         MLConfig                `yaml:"ml"`
	Containers map[string]rawContainer `yaml:"containers"`
}

const defaultSampleIntervalMs = 2000

// Load reads and validates the configuration file at path. Any error here
// is fatal at startup per spec.md §7.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Events.Sink == "" {
		return nil, fmt.Errorf("config: events.sink is required")
	}
	if cfg.Events.SampleIntervalMs <= 0 {
		cfg.Events.SampleIntervalMs = defaultSampleIntervalMs
	}
	if len(cfg.Containers) == 0 {
		return nil, fmt.Errorf("config: at least one container must be declared")
	}
	for name, rc := range cfg.Containers {
		if rc.CgroupPath == "" {
			return nil, fmt.Errorf("container %s: cgroup_path is required", name)
		}
	}
	return &cfg, nil
}

// ContainerSpecs returns the configured containers as a deterministic-order
// slice of model.ContainerSpec, validating soft<=hard per resource.
func (c *Config) ContainerSpecs() ([]model.ContainerSpec, error) {
	names := make([]string, 0, len(c.Containers))
	for name := range c.Containers {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]model.ContainerSpec, 0, len(names))
	for _, name := range names {
		rc := c.Containers[name]
		spec := model.ContainerSpec{
			Name:       name,
			CgroupPath: rc.CgroupPath,
			CPU:        rc.CPU,
			Memory:     rc.Memory,
			IO:         rc.IO,
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
