package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	testTreasury = "0x00000000000000000000000000000000000000fe"
	testSigner   = "0x0000000000000000000000000000000000000001"
)

// validConfig returns defaults completed with the fields that have no
// sensible default.
func validConfig() Config {
	cfg := Defaults()
	cfg.Engine.Treasury = testTreasury
	cfg.Engine.Signers = []string{testSigner}
	return cfg
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsValidateAfterIdentity(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateMissingIdentity(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "treasury")
	require.Contains(t, err.Error(), "signer")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "fly"
	cfg.Redis.Addr = ""
	cfg.Engine.Treasury = "not-an-address"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown mode "fly"`)
	require.Contains(t, err.Error(), "redis: addr")
	require.Contains(t, err.Error(), "not-an-address")
}

func TestValidateArchiveRequiresS3(t *testing.T) {
	cfg := validConfig()
	cfg.Archive.Enabled = true
	cfg.S3.Bucket = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "s3: bucket")
}

func TestValidateOperatorKeyPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Operator.EncryptedKeyPath = "/etc/jnglz/operator.key.json"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "key_password")
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
mode = "archive"
log_level = "debug"

[engine]
treasury = "`+testTreasury+`"
signers = ["`+testSigner+`"]
creator_window = "2h"

[server]
port = 9999
`))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "archive", cfg.Mode)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Engine.CreatorWindow.Duration)

	// Untouched sections keep their defaults.
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, int64(150), cfg.Engine.PlatformFeeBps)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
[engine]
treasury = "`+testTreasury+`"
signers = ["`+testSigner+`"]

[redis]
addr = "file:6379"
`))

	t.Setenv("JNGLZ_REDIS_ADDR", "env:6379")
	t.Setenv("JNGLZ_ENGINE_MIN_BOND", "25000000")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env:6379", cfg.Redis.Addr)
	require.Equal(t, int64(25_000_000), cfg.Engine.MinBond)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestAddressHelpers(t *testing.T) {
	cfg := validConfig()
	require.Equal(t, common.HexToAddress(testTreasury), cfg.TreasuryAddress())

	signers := cfg.SignerAddresses()
	require.Len(t, signers, 1)
	require.Equal(t, common.HexToAddress(testSigner), signers[0])
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.Password = "pg-pass"
	cfg.Redis.Password = "redis-pass"
	cfg.S3.SecretKey = "s3-secret"
	cfg.Operator.ApiKey = "op-key"

	red := RedactedConfig(&cfg)
	require.NotContains(t, red.Postgres.Password, "pg-pass")
	require.NotContains(t, red.Redis.Password, "redis-pass")
	require.NotContains(t, red.S3.SecretKey, "s3-secret")
	require.NotContains(t, red.Operator.ApiKey, "op-key")

	// The original is untouched.
	require.Equal(t, "pg-pass", cfg.Postgres.Password)
}
