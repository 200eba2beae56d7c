package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/streamssr/streamssr/internal/errors"
)

const (
	// EnvConfigFile names the optional YAML configuration file.
	EnvConfigFile = "STREAMSSR_CONFIG"

	// DefaultPort is the default listen port.
	DefaultPort = 3000

	// DefaultDistDir is the default build output directory.
	DefaultDistDir = "dist"

	// DefaultShellTimeout bounds how long a request may wait for the shell.
	DefaultShellTimeout = 10 * time.Second

	// DefaultSectionTimeout bounds a single section fetch after the shell.
	DefaultSectionTimeout = 30 * time.Second

	// DefaultWidgetRemote is the remote entry of the widget bundle.
	DefaultWidgetRemote = "http://localhost:3001/assets/remoteEntry.js"

	// DefaultAssetsPrefix is the URL prefix for built client assets.
	DefaultAssetsPrefix = "/assets/"

	// DefaultNamespace is the metrics namespace.
	DefaultNamespace = "streamssr"

	// EnvProduction is the Env value that enables production mode.
	EnvProduction = "production"

	// EnvDevelopment is the default Env value.
	EnvDevelopment = "development"
)

// Config is the complete process configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port,omitempty"`

	// Env is "production" or "development".
	Env string `yaml:"env,omitempty"`

	// DistDir is the build output directory holding client/ and static/.
	DistDir string `yaml:"distDir,omitempty"`

	// Stream configures the streaming responder.
	Stream StreamConfig `yaml:"stream,omitempty"`

	// Widgets configures federated widgets.
	Widgets WidgetsConfig `yaml:"widgets,omitempty"`

	// Assets configures client asset serving.
	Assets AssetsConfig `yaml:"assets,omitempty"`

	// Telemetry configures metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	// Debug holds knobs for demos and tests.
	Debug DebugConfig `yaml:"debug,omitempty"`

	// configPath stores the path the file layer was loaded from.
	configPath string
}

// StreamConfig configures deadlines of the streaming responder.
type StreamConfig struct {
	// ShellTimeout is the deadline for the shell (e.g., "10s").
	ShellTimeout string `yaml:"shellTimeout,omitempty"`

	// SectionTimeout is the per-section fetch budget (e.g., "30s"). A
	// negative value disables the budget.
	SectionTimeout string `yaml:"sectionTimeout,omitempty"`
}

// WidgetsConfig configures the federated widget remote.
type WidgetsConfig struct {
	// Remote is the URL of the remote entry module.
	Remote string `yaml:"remote,omitempty"`
}

// AssetsConfig configures where /assets is served from.
type AssetsConfig struct {
	// Prefix is the URL prefix (default "/assets/").
	Prefix string `yaml:"prefix,omitempty"`

	// Bucket, when set, serves assets from S3 instead of disk.
	Bucket string `yaml:"bucket,omitempty"`

	// KeyPrefix is prepended to object keys in Bucket.
	KeyPrefix string `yaml:"keyPrefix,omitempty"`

	// Region is the bucket region.
	Region string `yaml:"region,omitempty"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	// Namespace is the Prometheus namespace.
	Namespace string `yaml:"namespace,omitempty"`

	// Trace selects a span exporter: "" (none) or "stdout".
	Trace string `yaml:"trace,omitempty"`
}

// DebugConfig holds demo knobs.
type DebugConfig struct {
	// FailSections lists sections whose provider always fails.
	FailSections []string `yaml:"failSections,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Port:    DefaultPort,
		Env:     EnvDevelopment,
		DistDir: DefaultDistDir,
		Stream: StreamConfig{
			ShellTimeout:   DefaultShellTimeout.String(),
			SectionTimeout: DefaultSectionTimeout.String(),
		},
		Widgets: WidgetsConfig{
			Remote: DefaultWidgetRemote,
		},
		Assets: AssetsConfig{
			Prefix: DefaultAssetsPrefix,
		},
		Telemetry: TelemetryConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load builds the configuration from defaults, the optional file named by
// STREAMSSR_CONFIG, and the process environment.
func Load() (*Config, error) {
	return LoadEnv(os.Getenv)
}

// LoadEnv is Load with an injectable environment lookup.
func LoadEnv(getenv func(string) string) (*Config, error) {
	cfg := New()
	if path := getenv(EnvConfigFile); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + path).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv overlays environment variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E121").WithDetail("PORT=" + v + " is not a number").Wrap(err)
		}
		c.Port = port
	}

	if v := getenv("ENV"); v != "" {
		c.Env = v
	} else if v := getenv("NODE_ENV"); v != "" {
		c.Env = v
	}

	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.DistDir, "STREAMSSR_DIST_DIR")
	setString(&c.Stream.ShellTimeout, "STREAMSSR_SHELL_TIMEOUT")
	setString(&c.Stream.SectionTimeout, "STREAMSSR_SECTION_TIMEOUT")
	setString(&c.Widgets.Remote, "STREAMSSR_WIDGET_REMOTE")
	setString(&c.Assets.Bucket, "STREAMSSR_ASSETS_BUCKET")
	setString(&c.Assets.KeyPrefix, "STREAMSSR_ASSETS_PREFIX")
	setString(&c.Assets.Region, "STREAMSSR_ASSETS_REGION")
	setString(&c.Telemetry.Trace, "STREAMSSR_TRACE")

	if v := getenv("STREAMSSR_FAIL_SECTIONS"); v != "" {
		c.Debug.FailSections = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Debug.FailSections = append(c.Debug.FailSections, name)
			}
		}
	}
	return nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Env == "" {
		c.Env = EnvDevelopment
	}
	if c.DistDir == "" {
		c.DistDir = DefaultDistDir
	}
	if c.Stream.ShellTimeout == "" {
		c.Stream.ShellTimeout = DefaultShellTimeout.String()
	}
	if c.Stream.SectionTimeout == "" {
		c.Stream.SectionTimeout = DefaultSectionTimeout.String()
	}
	if c.Widgets.Remote == "" {
		c.Widgets.Remote = DefaultWidgetRemote
	}
	if c.Assets.Prefix == "" {
		c.Assets.Prefix = DefaultAssetsPrefix
	}
	if !strings.HasSuffix(c.Assets.Prefix, "/") {
		c.Assets.Prefix += "/"
	}
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("E121").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Port))
	}
	shell, err := time.ParseDuration(c.Stream.ShellTimeout)
	if err != nil {
		return errors.New("E121").WithDetail("stream.shellTimeout=" + c.Stream.ShellTimeout + " is not a duration").Wrap(err)
	}
	if shell <= 0 {
		return errors.New("E121").WithDetail("stream.shellTimeout must be positive")
	}
	section, err := time.ParseDuration(c.Stream.SectionTimeout)
	if err != nil {
		return errors.New("E121").WithDetail("stream.sectionTimeout=" + c.Stream.SectionTimeout + " is not a duration").Wrap(err)
	}
	if section == 0 {
		return errors.New("E121").WithDetail("stream.sectionTimeout must be non-zero; use a negative value to disable it")
	}
	switch c.Telemetry.Trace {
	case "", "stdout":
	default:
		return errors.New("E121").WithDetail("telemetry.trace must be empty or \"stdout\", got " + c.Telemetry.Trace)
	}
	return nil
}

// Production reports whether production mode is enabled.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// ShellTimeout returns the parsed shell deadline.
func (c *Config) ShellTimeout() time.Duration {
	return parseDuration(c.Stream.ShellTimeout, DefaultShellTimeout)
}

// SectionTimeout returns the parsed per-section budget. A negative result
// means no budget.
func (c *Config) SectionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Stream.SectionTimeout)
	if err != nil || d == 0 {
		return DefaultSectionTimeout
	}
	return d
}

// ManifestPath returns the path of the client build manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.DistDir, "client", ".vite", "manifest.json")
}

// ClientAssetsDir returns the directory served under the assets prefix.
func (c *Config) ClientAssetsDir() string {
	return filepath.Join(c.DistDir, "client", "assets")
}

// ShellPath returns the path of the pre-generated static shell.
func (c *Config) ShellPath() string {
	return filepath.Join(c.DistDir, "static", "shell.html")
}

// Path returns the path the file layer was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
