package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseFile_OverlaysGivenFields(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http":      ":9000",
		"secret_key":              "from-file",
		"token_validity_duration": "24h",
		"secure_cookie":           true,
		"request_timeout":         5000000000,
	})

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseFile(&c, []string{"-c", path}))

	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, "from-file", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.True(t, c.SecureCookie)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	// untouched
	assert.Equal(t, "/dashboard", c.DefaultPath)
	assert.Equal(t, 10, c.BcryptCost)
}

func TestParseFile_NoPath(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, parseFile(&c, []string{"-a", ":1"}))
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}

func TestParseFile_Errors(t *testing.T) {
	var c Config

	err := parseFile(&c, []string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	err = parseFile(&c, []string{"-config", bad})
	require.ErrorContains(t, err, "parse config")
}

func TestLoad_FlagsBeatJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http": ":9000",
		"secret_key":         "from-file",
	})

	c, err := Load([]string{"-c", path, "-s", "from-flag"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, "from-flag", c.SecretKey)
}

func TestParseFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("secret_key: yaml-secret\ntoken_validity_duration: 2h\nsecure_cookie: false\n"), 0o600))

	var c Config
	c.LoadDefaults()
	c.SecureCookie = true
	require.NoError(t, parseFile(&c, []string{"-c", path}))

	assert.Equal(t, "yaml-secret", c.SecretKey)
	assert.Equal(t, 2*time.Hour, c.TokenValidityDuration)
	assert.False(t, c.SecureCookie)
}
