package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies JNGLZ_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known JNGLZ_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "JNGLZ_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "JNGLZ_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "JNGLZ_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "JNGLZ_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "JNGLZ_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "JNGLZ_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "JNGLZ_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "JNGLZ_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "JNGLZ_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "JNGLZ_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "JNGLZ_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "JNGLZ_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "JNGLZ_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "JNGLZ_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "JNGLZ_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "JNGLZ_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "JNGLZ_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "JNGLZ_S3_REGION")
	setStr(&cfg.S3.Bucket, "JNGLZ_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "JNGLZ_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "JNGLZ_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "JNGLZ_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "JNGLZ_S3_FORCE_PATH_STYLE")

	// ── Engine ──
	setStr(&cfg.Engine.Treasury, "JNGLZ_ENGINE_TREASURY")
	setStringSlice(&cfg.Engine.Signers, "JNGLZ_ENGINE_SIGNERS")
	setInt64(&cfg.Engine.PlatformFeeBps, "JNGLZ_ENGINE_PLATFORM_FEE_BPS")
	setInt64(&cfg.Engine.CreatorFeeBps, "JNGLZ_ENGINE_CREATOR_FEE_BPS")
	setInt64(&cfg.Engine.ProposerRewardBps, "JNGLZ_ENGINE_PROPOSER_REWARD_BPS")
	setInt64(&cfg.Engine.MinBond, "JNGLZ_ENGINE_MIN_BOND")
	setInt64(&cfg.Engine.BondBps, "JNGLZ_ENGINE_BOND_BPS")
	setInt64(&cfg.Engine.ResolutionFee, "JNGLZ_ENGINE_RESOLUTION_FEE")
	setDuration(&cfg.Engine.CreatorWindow, "JNGLZ_ENGINE_CREATOR_WINDOW")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "JNGLZ_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "JNGLZ_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "JNGLZ_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "JNGLZ_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "JNGLZ_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "JNGLZ_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerIP, "JNGLZ_SERVER_RATE_LIMIT_PER_IP")
	setDuration(&cfg.Server.RateWindow, "JNGLZ_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "JNGLZ_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "JNGLZ_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "JNGLZ_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "JNGLZ_NOTIFY_EVENTS")

	// ── Operator ──
	setStr(&cfg.Operator.ApiKey, "JNGLZ_OPERATOR_API_KEY")
	setStr(&cfg.Operator.EncryptedKeyPath, "JNGLZ_OPERATOR_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Operator.KeyPassword, "JNGLZ_OPERATOR_KEY_PASSWORD")

	// ── Top-level ──
	setStr(&cfg.Mode, "JNGLZ_MODE")
	setStr(&cfg.LogLevel, "JNGLZ_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
