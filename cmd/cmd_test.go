package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/fulfillbridge/internal/config"
	"github.com/fulfillbridge/internal/licensekey"
)

var loaderEnv = []string{
	"FASTSPRING_API_USERNAME", "FASTSPRING_API_PASSWORD", "FASTSPRING_API_BASE",
	"KEYGEN_PRODUCT_TOKEN", "KEYGEN_ACCOUNT_ID", "KEYGEN_POLICY_ID", "KEYGEN_API_BASE",
	"HOST", "PORT", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
}

func newTestApp(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:   "fulfillbridge",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}},
		},
		Commands: []*cli.Command{
			ServeCommand(),
			ConfigCommand(),
			IssueCommand(),
			KeygenCommand(),
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func isolate(t *testing.T) {
	t.Helper()
	for _, name := range loaderEnv {
		t.Setenv(name, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")
	chdir(t, t.TempDir())
}

func TestKeygenCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"fulfillbridge", "keygen", "-n", "3"}))

	keys := strings.Fields(out.String())
	require.Len(t, keys, 3)
	for _, key := range keys {
		assert.True(t, licensekey.Valid(key), key)
	}
}

func TestKeygenCommand_RejectsZero(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"fulfillbridge", "keygen", "-n", "0"})
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestPrintConfigCheck(t *testing.T) {
	var out bytes.Buffer
	PrintConfigCheck(&out, &config.CheckResult{
		Missing:  []string{"KEYGEN_POLICY_ID"},
		Present:  map[string]string{"KEYGEN_ACCOUNT_ID": "acct", "FASTSPRING_API_USERNAME": "user"},
		Warnings: []string{"server binds to every interface"},
	})

	text := out.String()
	assert.Contains(t, text, "Missing required variables")
	assert.Contains(t, text, "   - KEYGEN_POLICY_ID")
	assert.Contains(t, text, "⚠ Warning: server binds to every interface")
	assert.NotContains(t, text, "All required configuration is present")
	assert.Less(t, strings.Index(text, "FASTSPRING_API_USERNAME"), strings.Index(text, "KEYGEN_ACCOUNT_ID"))
}

func TestConfigInitThenValidate(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	app := newTestApp(&out)
	require.NoError(t, app.Run([]string{"fulfillbridge", "config", "init", "-o", "fulfillbridge.toml"}))
	assert.Contains(t, out.String(), "Created configuration file at fulfillbridge.toml")

	err := app.Run([]string{"fulfillbridge", "config", "validate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestConfigCheck_MasksSecrets(t *testing.T) {
	isolate(t)
	t.Setenv("KEYGEN_PRODUCT_TOKEN", "prod-0123456789abcdef")

	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"fulfillbridge", "config", "check"}))
	assert.Contains(t, out.String(), "KEYGEN_PRODUCT_TOKEN")
	assert.NotContains(t, out.String(), "prod-0123456789abcdef")
}

func TestServeCommand_RefusesInvalidSettings(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("fulfillbridge.toml", []byte("[fastspring.retry]\nmax_retries = -1\n"), 0o644))

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"fulfillbridge", "serve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "max_retries must not be negative")
}

func TestIssueCommand(t *testing.T) {
	isolate(t)

	var licensed int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/orders/ORD9":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"orders":[{"id":"ORD9","reference":"REF9","customer":{"email":"ops@example.com"}}]}`))
		case r.URL.Path == "/accounts/acct/licenses":
			licensed++
			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"lic-9","type":"licenses","attributes":{"key":"abcd-ef01-2345-6789"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	t.Setenv("FASTSPRING_API_BASE", upstream.URL)
	t.Setenv("FASTSPRING_API_USERNAME", "user")
	t.Setenv("FASTSPRING_API_PASSWORD", "pass")
	t.Setenv("KEYGEN_API_BASE", upstream.URL)
	t.Setenv("KEYGEN_ACCOUNT_ID", "acct")
	t.Setenv("KEYGEN_PRODUCT_TOKEN", "token")
	t.Setenv("KEYGEN_POLICY_ID", "policy")

	var out bytes.Buffer
	app := newTestApp(&out)
	require.NoError(t, app.Run([]string{"fulfillbridge", "issue", "--order", "ORD9"}))

	assert.Equal(t, 1, licensed)
	assert.Contains(t, out.String(), "License key: abcd-ef01-2345-6789")
	assert.Contains(t, out.String(), "License ID:  lic-9")
	assert.Contains(t, out.String(), "Customer:    ops@example.com")

	out.Reset()
	err := app.Run([]string{"fulfillbridge", "issue", "--order", "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid order ID.")
	assert.Equal(t, 1, licensed)
	assert.Empty(t, out.String())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
