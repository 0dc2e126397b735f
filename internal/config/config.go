package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/BAWES-Universe/workadventure-universe/internal/core/domain"
)

// PortRange is the host-port window ephemeral verify instances bind into.
// Collision avoidance relies on the width of this range, so it must stay
// wide; see Validate.
type PortRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Config is the pipeline configuration. Values are resolved file < env;
// command-line flags override individual fields on top of this.
type Config struct {
	// Namespace is the registry namespace images are published under,
	// e.g. "bawesuniverse" or "registry.example.com/bawes".
	Namespace string `yaml:"namespace"`
	// Lineage is the fixed literal tying images to this pipeline; part of
	// every image reference.
	Lineage string `yaml:"lineage"`
	// FloatingTag is the rewritable reference republished on each push.
	FloatingTag string `yaml:"floating_tag"`
	// RegistryAuth is an opaque pre-encoded identity reference handed to
	// the push operation verbatim.
	RegistryAuth string `yaml:"registry_auth"`
	// ContextDir is the repository root build contexts resolve against.
	ContextDir string `yaml:"context_dir"`
	// VerifyPorts is the randomized host-port range for verification.
	VerifyPorts PortRange `yaml:"verify_ports"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Namespace:   "bawesuniverse",
		Lineage:     "universe",
		FloatingTag: "latest",
		ContextDir:  ".",
		VerifyPorts: PortRange{Min: 20000, Max: 59999},
	}
}

// Load resolves the configuration: defaults, then the YAML file at path if
// one exists, then UNIVERSE_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("invalid config %s: %v", path, err)}
		}
	}

	if env := os.Getenv("UNIVERSE_NAMESPACE"); env != "" {
		cfg.Namespace = env
	}
	if env := os.Getenv("UNIVERSE_LINEAGE"); env != "" {
		cfg.Lineage = env
	}
	if env := os.Getenv("UNIVERSE_FLOATING_TAG"); env != "" {
		cfg.FloatingTag = env
	}
	if env := os.Getenv("UNIVERSE_REGISTRY_AUTH"); env != "" {
		cfg.RegistryAuth = env
	}
	if env := os.Getenv("UNIVERSE_CONTEXT_DIR"); env != "" {
		cfg.ContextDir = env
	}
	if env := os.Getenv("UNIVERSE_VERIFY_PORT_MIN"); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil {
			return nil, &domain.ConfigurationError{Reason: "UNIVERSE_VERIFY_PORT_MIN must be an integer"}
		}
		cfg.VerifyPorts.Min = n
	}
	if env := os.Getenv("UNIVERSE_VERIFY_PORT_MAX"); env != "" {
		n, err := strconv.Atoi(env)
		if err != nil {
			return nil, &domain.ConfigurationError{Reason: "UNIVERSE_VERIFY_PORT_MAX must be an integer"}
		}
		cfg.VerifyPorts.Max = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would break the pipeline before any
// side effect happens.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return &domain.ConfigurationError{Reason: "namespace must not be empty"}
	}
	if c.Lineage == "" {
		return &domain.ConfigurationError{Reason: "lineage must not be empty"}
	}
	if c.FloatingTag == "" {
		return &domain.ConfigurationError{Reason: "floating_tag must not be empty"}
	}
	if c.VerifyPorts.Min < 1024 || c.VerifyPorts.Max > 65535 {
		return &domain.ConfigurationError{Reason: "verify_ports must lie within 1024-65535"}
	}
	// A narrow range defeats randomization as the collision guard.
	if c.VerifyPorts.Max-c.VerifyPorts.Min < 1000 {
		return &domain.ConfigurationError{Reason: "verify_ports range must span at least 1000 ports"}
	}
	return nil
}

// ImageRef renders the deterministic image reference for a service and tag:
// {namespace}/{service}-{lineage}:{tag}.
func (c *Config) ImageRef(imageName, tag string) string {
	return fmt.Sprintf("%s/%s-%s:%s", c.Namespace, imageName, c.Lineage, tag)
}
