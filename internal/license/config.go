package license

import "time"

const (
	DefaultBaseURL = "https://api.keygen.sh/v1"
	DefaultTimeout = 5 * time.Second
)

// Config holds the licensing service account and the policy new licenses use.
type Config struct {
	BaseURL      string        `koanf:"base_url"`
	AccountID    string        `koanf:"account_id"`
	ProductToken string        `koanf:"product_token"`
	PolicyID     string        `koanf:"policy_id"`
	Timeout      time.Duration `koanf:"timeout"`
}

// EffectiveTimeout never returns a zero or negative timeout.
func (c Config) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
