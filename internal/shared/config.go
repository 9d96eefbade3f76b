package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Browser     BrowserConfig     `toml:"browser"`
	API         APIConfig         `toml:"api"`
	Output      OutputConfig      `toml:"output"`
	History     HistoryConfig     `toml:"history"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Stremio StremioConfig `toml:"stremio"`
}

// StremioConfig contains the Stremio account credentials used for the
// browser-driven login. Both values are consumed as opaque strings and
// never logged.
type StremioConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// BrowserConfig contains headless browser settings.
type BrowserConfig struct {
	Kind     string `toml:"kind"`
	Headless bool   `toml:"headless"`
}

// APIConfig contains Stremio datastore API settings.
type APIConfig struct {
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
}

// OutputConfig contains export output settings.
type OutputConfig struct {
	Dir        string `toml:"dir"`
	OpenReport bool   `toml:"open_report"`
	Archive    bool   `toml:"archive"`
}

// HistoryConfig contains run-history store settings.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvCredentials overlays Stremio credentials from the environment
// onto the config. A .env file in the working directory is loaded first
// when present; STREMIO_EMAIL and STREMIO_PASSWORD take precedence over
// the TOML values.
func (c *Config) LoadEnvCredentials() {
	_ = godotenv.Load()

	if email := os.Getenv("STREMIO_EMAIL"); email != "" {
		c.Credentials.Stremio.Email = email
	}
	if password := os.Getenv("STREMIO_PASSWORD"); password != "" {
		c.Credentials.Stremio.Password = password
	}
}

// ValidateCredentials checks that both Stremio credentials are present.
func (c *Config) ValidateCredentials() error {
	if c.Credentials.Stremio.Email == "" || c.Credentials.Stremio.Password == "" {
		return fmt.Errorf("%w: set credentials.stremio in config.toml or STREMIO_EMAIL/STREMIO_PASSWORD", ErrMissingCredentials)
	}
	return nil
}
