package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fulfillbridge/internal/license"
	"github.com/fulfillbridge/internal/logging"
	"github.com/fulfillbridge/internal/payment"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig    `koanf:"server"`
	FastSpring payment.Config  `koanf:"fastspring"`
	Keygen     license.Config  `koanf:"keygen"`
	Log        logging.Options `koanf:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       float64       `koanf:"rate_limit"` // /success requests per second per client, 0 disables
	RateBurst       int           `koanf:"rate_burst"`
}

// Address returns host:port for the listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// envKeys maps the deployment environment variables onto config keys.
var envKeys = map[string]string{
	"FASTSPRING_API_USERNAME": "fastspring.username",
	"FASTSPRING_API_PASSWORD": "fastspring.password",
	"FASTSPRING_API_BASE":     "fastspring.base_url",
	"KEYGEN_PRODUCT_TOKEN":    "keygen.product_token",
	"KEYGEN_ACCOUNT_ID":       "keygen.account_id",
	"KEYGEN_POLICY_ID":        "keygen.policy_id",
	"KEYGEN_API_BASE":         "keygen.base_url",
	"HOST":                    "server.host",
	"PORT":                    "server.port",
	"LOG_LEVEL":               "log.level",
	"LOG_FORMAT":              "log.format",
	"LOG_FILE":                "log.file",
}

var defaultPaths = []string{"./fulfillbridge.toml", "$HOME/.fulfillbridge.toml"}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.host":                  "127.0.0.1",
		"server.port":                  8080,
		"server.shutdown_timeout":      "10s",
		"server.rate_limit":            5,
		"server.rate_burst":            10,
		"fastspring.base_url":          payment.DefaultBaseURL,
		"fastspring.timeout":           payment.DefaultTimeout.String(),
		"fastspring.retry.max_retries": 2,
		"fastspring.retry.base_delay":  "250ms",
		"fastspring.retry.max_delay":   "2s",
		"fastspring.retry.multiplier":  2.0,
		"fastspring.retry.jitter":      true,
		"keygen.base_url":              license.DefaultBaseURL,
		"keygen.timeout":               license.DefaultTimeout.String(),
		"log.level":                    "info",
		"log.format":                   logging.FormatConsole,
	}
}

// LoadConfig layers defaults, the TOML file and the environment, in that order.
// An explicit configPath must exist; otherwise the default locations are tried.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading config %s: %w", path, err)
				}
				break
			}
		}
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig writes a sample configuration file.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# fulfillbridge configuration
# Credentials are usually supplied through the environment instead:
# FASTSPRING_API_USERNAME, FASTSPRING_API_PASSWORD, KEYGEN_PRODUCT_TOKEN,
# KEYGEN_ACCOUNT_ID, KEYGEN_POLICY_ID, PORT

[server]
host = "127.0.0.1"
port = 8080
shutdown_timeout = "10s"
rate_limit = 5
rate_burst = 10

[fastspring]
base_url = "https://api.fastspring.com"
username = ""
password = ""
timeout = "5s"

[fastspring.retry]
max_retries = 2
base_delay = "250ms"
max_delay = "2s"
multiplier = 2.0
jitter = true

[keygen]
base_url = "https://api.keygen.sh/v1"
account_id = ""
product_token = ""
policy_id = ""
timeout = "5s"

[log]
level = "info"
format = "console"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate reports every missing credential and malformed setting.
func Validate(config *Config) error {
	var errs []error

	for _, v := range MissingCredentials(config) {
		errs = append(errs, fmt.Errorf("%s is required", v))
	}
	errs = append(errs, ValidateSettings(config))

	return errors.Join(errs...)
}

// ValidateSettings checks everything except credentials, which may be
// absent until the first request needs them.
func ValidateSettings(config *Config) error {
	var errs []error

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d is out of range", config.Server.Port))
	}
	if config.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server rate_limit must not be negative"))
	}
	if config.FastSpring.Retry.MaxRetries < 0 {
		errs = append(errs, errors.New("fastspring retry max_retries must not be negative"))
	}

	return errors.Join(errs...)
}

// MissingCredentials lists the environment names of credentials that are unset.
func MissingCredentials(config *Config) []string {
	required := []struct {
		name  string
		value string
	}{
		{"FASTSPRING_API_USERNAME", config.FastSpring.Username},
		{"FASTSPRING_API_PASSWORD", config.FastSpring.Password},
		{"KEYGEN_PRODUCT_TOKEN", config.Keygen.ProductToken},
		{"KEYGEN_ACCOUNT_ID", config.Keygen.AccountID},
		{"KEYGEN_POLICY_ID", config.Keygen.PolicyID},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}
