package config

// CheckResult holds the result of configuration validation
type CheckResult struct {
	Missing  []string          // Required credentials that are missing
	Present  map[string]string // Settings that are set (secrets masked)
	Warnings []string          // Non-fatal warnings
}

// Check summarizes cfg for display without leaking secrets.
func Check(cfg *Config) *CheckResult {
	result := &CheckResult{
		Missing: MissingCredentials(cfg),
		Present: make(map[string]string),
	}

	secrets := map[string]string{
		"FASTSPRING_API_PASSWORD": cfg.FastSpring.Password,
		"KEYGEN_PRODUCT_TOKEN":    cfg.Keygen.ProductToken,
	}
	for k, v := range secrets {
		if v != "" {
			result.Present[k] = maskSecret(v)
		}
	}

	plain := map[string]string{
		"FASTSPRING_API_USERNAME": cfg.FastSpring.Username,
		"KEYGEN_ACCOUNT_ID":       cfg.Keygen.AccountID,
		"KEYGEN_POLICY_ID":        cfg.Keygen.PolicyID,
		"FASTSPRING_API_BASE":     cfg.FastSpring.BaseURL,
		"KEYGEN_API_BASE":         cfg.Keygen.BaseURL,
		"LISTEN":                  cfg.Server.Address(),
	}
	for k, v := range plain {
		if v != "" {
			result.Present[k] = v
		}
	}

	if cfg.Server.Host == "" || cfg.Server.Host == "0.0.0.0" || cfg.Server.Host == "::" {
		result.Warnings = append(result.Warnings, "server listens on all interfaces; put it behind a reverse proxy")
	}
	if cfg.Server.RateLimit == 0 {
		result.Warnings = append(result.Warnings, "rate limiting on /success is disabled")
	}
	if cfg.FastSpring.Retry.MaxRetries == 0 {
		result.Warnings = append(result.Warnings, "order lookups are not retried on processor outages")
	}

	return result
}

// maskSecret masks a secret value for display, showing only first and last 2 chars
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}
