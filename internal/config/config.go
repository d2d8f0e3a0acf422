package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultGoThreshold    = 70.0
	DefaultHTTPPort       = 8080
	DefaultAuthHeader     = "X-API-Key"
	DefaultRetention      = 30 * 24 * time.Hour
	DefaultNotifyCooldown = 15 * time.Minute
	DefaultGHIMetric      = "station_ghi_kwh_m2_year"
)

// weightSumTolerance bounds the floating-point slack allowed when checking
// that weights sum to 1.0.
const weightSumTolerance = 1e-9

// Config is the top-level configuration for both the CLI and the server.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Server    ServerConfig    `yaml:"server"`
}

// EvaluatorConfig holds everything the orchestration core needs: the producer
// registry, the weight table, the GO threshold, and invocation timeouts.
type EvaluatorConfig struct {
	// Timeout is the uniform per-producer invocation deadline. Individual
	// producers may override it via ProducerSpec.Timeout.
	Timeout time.Duration `yaml:"timeout"`

	// GoThreshold is the composite score at or above which the decision is GO.
	GoThreshold float64 `yaml:"go_threshold"`

	// Weights maps dimension name → weight. Weights must cover every
	// configured producer dimension and sum to 1.0.
	Weights map[string]float64 `yaml:"weights"`

	// Producers is the list of analysis producers to register, one per dimension.
	Producers []ProducerSpec `yaml:"producers"`
}

// ProducerSpec describes one configured analysis producer.
type ProducerSpec struct {
	// Dimension is one of: research | permitting | design.
	Dimension string `yaml:"dimension"`

	// Timeout overrides the uniform evaluator timeout for this producer.
	// Zero means "use the default".
	Timeout time.Duration `yaml:"timeout"`

	// PolicyData is the path to the policy-signals JSON dataset (research).
	PolicyData string `yaml:"policy_data"`

	// PermitRules is the path to the permit-rules JSON dataset (permitting).
	PermitRules string `yaml:"permit_rules"`

	// Irradiance configures the irradiance data source (design).
	Irradiance IrradianceConfig `yaml:"irradiance"`

	// RoofAreaM2 is the assumed usable roof area for design sizing (design).
	// Zero means the producer's built-in default.
	RoofAreaM2 float64 `yaml:"roof_area_m2"`
}

// IrradianceConfig selects where the design producer reads GHI data from.
type IrradianceConfig struct {
	// Source is one of: file | metrics.
	Source string `yaml:"source"`

	// Path is the CSV dataset path — used when Source == "file".
	Path string `yaml:"path"`

	// Endpoint is a Prometheus text-exposition URL — used when Source == "metrics".
	Endpoint string `yaml:"endpoint"`

	// Metric is the gauge name holding annual GHI, labelled by city and state.
	Metric string `yaml:"metric"`
}

// ServerConfig holds all settings for the `sunscout serve` front end.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures incoming REST API authentication.
	Auth AuthConfig `yaml:"auth"`

	// Storage configures the evaluation history backend.
	Storage StorageConfig `yaml:"storage"`

	// Webhooks lists decision notification targets.
	Webhooks []WebhookConfig `yaml:"webhooks"`

	// NotifyOn lists the decisions that trigger webhook delivery.
	// Defaults to no_go and indeterminate.
	NotifyOn []string `yaml:"notify_on"`

	// NotifyCooldown suppresses repeat notifications for the same site.
	NotifyCooldown time.Duration `yaml:"notify_cooldown"`
}

// AuthConfig configures REST API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header the key is expected in.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// StorageConfig configures the evaluation history backend.
type StorageConfig struct {
	// Backend selects the storage implementation: sqlite.
	Backend string `yaml:"backend"`

	// Path is the filesystem path for the SQLite database file.
	Path string `yaml:"path"`

	// Retention is how long evaluations are kept before deletion.
	Retention time.Duration `yaml:"retention"`
}

// WebhookConfig defines one notification delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults. Validation
// failures here are the only hard failures the system raises — everything
// downstream is reported through outcome statuses.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Evaluator: EvaluatorConfig{
			Timeout:     DefaultTimeout,
			GoThreshold: DefaultGoThreshold,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Auth:     AuthConfig{Header: DefaultAuthHeader},
			Storage: StorageConfig{
				Backend:   "sqlite",
				Path:      "sunscout.db",
				Retention: DefaultRetention,
			},
			NotifyOn:       []string{string(feasibility.DecisionNoGo), string(feasibility.DecisionIndeterminate)},
			NotifyCooldown: DefaultNotifyCooldown,
		},
	}
}

// applyDefaults fills nested defaults that depend on parsed values.
func applyDefaults(cfg *Config) {
	if cfg.Evaluator.Weights == nil {
		cfg.Evaluator.Weights = map[string]float64{
			string(feasibility.DimensionResearch):   0.4,
			string(feasibility.DimensionPermitting): 0.3,
			string(feasibility.DimensionDesign):     0.3,
		}
	}
	for i := range cfg.Evaluator.Producers {
		p := &cfg.Evaluator.Producers[i]
		if p.Dimension == string(feasibility.DimensionDesign) && p.Irradiance.Metric == "" {
			p.Irradiance.Metric = DefaultGHIMetric
		}
	}
	if cfg.Server.Auth.Header == "" {
		cfg.Server.Auth.Header = DefaultAuthHeader
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	ev := &cfg.Evaluator

	if ev.Timeout <= 0 {
		return fmt.Errorf("evaluator.timeout must be positive")
	}
	if ev.GoThreshold < 0 || ev.GoThreshold > 100 {
		return fmt.Errorf("evaluator.go_threshold must be in [0, 100]")
	}
	if len(ev.Producers) == 0 {
		return fmt.Errorf("evaluator.producers must not be empty")
	}

	seen := make(map[string]bool, len(ev.Producers))
	var weightSum float64
	for i, p := range ev.Producers {
		if !feasibility.Dimension(p.Dimension).Known() {
			return fmt.Errorf("producers[%d]: unknown dimension %q", i, p.Dimension)
		}
		if seen[p.Dimension] {
			return fmt.Errorf("producers[%d]: duplicate dimension %q", i, p.Dimension)
		}
		seen[p.Dimension] = true

		if p.Timeout < 0 {
			return fmt.Errorf("producers[%d] %q: timeout must not be negative", i, p.Dimension)
		}

		w, ok := ev.Weights[p.Dimension]
		if !ok {
			return fmt.Errorf("evaluator.weights: missing weight for dimension %q", p.Dimension)
		}
		if w <= 0 {
			return fmt.Errorf("evaluator.weights[%s]: weight must be positive", p.Dimension)
		}
		weightSum += w

		switch p.Dimension {
		case string(feasibility.DimensionResearch):
			if p.PolicyData == "" {
				return fmt.Errorf("producers[%d] %q: policy_data is required", i, p.Dimension)
			}
		case string(feasibility.DimensionPermitting):
			if p.PermitRules == "" {
				return fmt.Errorf("producers[%d] %q: permit_rules is required", i, p.Dimension)
			}
		case string(feasibility.DimensionDesign):
			switch p.Irradiance.Source {
			case "file":
				if p.Irradiance.Path == "" {
					return fmt.Errorf("producers[%d] %q: irradiance.path is required for source=file", i, p.Dimension)
				}
			case "metrics":
				if p.Irradiance.Endpoint == "" {
					return fmt.Errorf("producers[%d] %q: irradiance.endpoint is required for source=metrics", i, p.Dimension)
				}
			default:
				return fmt.Errorf("producers[%d] %q: irradiance.source must be \"file\" or \"metrics\"", i, p.Dimension)
			}
			if p.RoofAreaM2 < 0 {
				return fmt.Errorf("producers[%d] %q: roof_area_m2 must not be negative", i, p.Dimension)
			}
		}
	}

	for dim := range ev.Weights {
		if !seen[dim] {
			return fmt.Errorf("evaluator.weights: weight for %q has no configured producer", dim)
		}
	}
	if math.Abs(weightSum-1.0) > weightSumTolerance {
		return fmt.Errorf("evaluator.weights must sum to 1.0, got %v", weightSum)
	}

	srv := &cfg.Server
	if srv.HTTPPort <= 0 || srv.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in [1, 65535]")
	}
	switch srv.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode: unknown mode %q", srv.Auth.Mode)
	}
	switch srv.Storage.Backend {
	case "sqlite", "":
	default:
		return fmt.Errorf("server.storage.backend: unknown backend %q", srv.Storage.Backend)
	}
	if srv.Storage.Backend == "sqlite" && srv.Storage.Path == "" {
		return fmt.Errorf("server.storage.path is required for the sqlite backend")
	}
	if srv.Storage.Retention <= 0 {
		return fmt.Errorf("server.storage.retention must be positive")
	}
	for i, wh := range srv.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}
	for i, d := range srv.NotifyOn {
		switch feasibility.Decision(d) {
		case feasibility.DecisionGo, feasibility.DecisionNoGo, feasibility.DecisionIndeterminate:
		default:
			return fmt.Errorf("server.notify_on[%d]: unknown decision %q", i, d)
		}
	}

	return nil
}
