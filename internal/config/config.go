package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string       `yaml:"discord_token"`
	DatabasePath  string       `yaml:"database_path"`
	LogLevel      string       `yaml:"log_level"`
	AllowedGuilds []string     `yaml:"allowed_guilds"`
	Health        HealthConfig `yaml:"health"`
	Spam          SpamConfig   `yaml:"spam"`
	Leveling      LevelConfig  `yaml:"leveling"`
	Quotes        QuoteConfig  `yaml:"quotes"`
	Notifications NotifyConfig `yaml:"notifications"`
	SettingsCache CacheConfig  `yaml:"settings_cache"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type SpamConfig struct {
	RepeatCount      int `yaml:"repeat_count"`
	WindowSeconds    int `yaml:"window_seconds"`
	TimeoutMinutes   int `yaml:"timeout_minutes"`
	BotBurstCount    int `yaml:"bot_burst_count"`
	HistoryFetchSize int `yaml:"history_fetch_size"`
}

type LevelConfig struct {
	XPPerMessage int `yaml:"xp_per_message"`
	XPPerLevel   int `yaml:"xp_per_level"`
}

type QuoteConfig struct {
	MinIntervalSeconds int `yaml:"min_interval_seconds"`
}

type NotifyConfig struct {
	DMWarnEnabled bool        `yaml:"dm_warn_enabled"`
	EmbedColors   EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
	Success int `yaml:"success"`
}

type CacheConfig struct {
	Size       int `yaml:"size"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath: "/data/mmbot.db",
		LogLevel:     "info",
		Health:       HealthConfig{Enabled: false, Addr: ":8080"},
		Spam: SpamConfig{
			RepeatCount:      3,
			WindowSeconds:    30,
			TimeoutMinutes:   60,
			BotBurstCount:    2,
			HistoryFetchSize: 10,
		},
		Leveling: LevelConfig{XPPerMessage: 5, XPPerLevel: 100},
		Quotes:   QuoteConfig{MinIntervalSeconds: 60},
		Notifications: NotifyConfig{
			DMWarnEnabled: true,
			EmbedColors: EmbedColors{
				Action:  0xFF9900,
				Warning: 0xFF0000,
				Error:   0xF97316,
				Success: 0x00FF99,
			},
		},
		SettingsCache: CacheConfig{Size: 256, TTLSeconds: 60},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.Spam.RepeatCount < 2 {
		cfg.Spam.RepeatCount = 2
	}
	if cfg.Spam.BotBurstCount < 2 {
		cfg.Spam.BotBurstCount = 2
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	if value := os.Getenv("ALLOWED_GUILDS"); value != "" {
		cfg.AllowedGuilds = splitList(value)
	}
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Spam.RepeatCount = envInt("SPAM_REPEAT_COUNT", cfg.Spam.RepeatCount)
	cfg.Spam.WindowSeconds = envInt("SPAM_WINDOW_SECONDS", cfg.Spam.WindowSeconds)
	cfg.Spam.TimeoutMinutes = envInt("SPAM_TIMEOUT_MINUTES", cfg.Spam.TimeoutMinutes)
	cfg.Spam.BotBurstCount = envInt("BOT_BURST_COUNT", cfg.Spam.BotBurstCount)
	cfg.Leveling.XPPerMessage = envInt("XP_PER_MESSAGE", cfg.Leveling.XPPerMessage)
	cfg.Leveling.XPPerLevel = envInt("XP_PER_LEVEL", cfg.Leveling.XPPerLevel)
	cfg.Notifications.DMWarnEnabled = envBool("DM_WARN_ENABLED", cfg.Notifications.DMWarnEnabled)
	cfg.Notifications.EmbedColors.Action = envInt("EMBED_COLOR_ACTION", cfg.Notifications.EmbedColors.Action)
	cfg.Notifications.EmbedColors.Warning = envInt("EMBED_COLOR_WARNING", cfg.Notifications.EmbedColors.Warning)
	cfg.Notifications.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.Notifications.EmbedColors.Error)
	cfg.Notifications.EmbedColors.Success = envInt("EMBED_COLOR_SUCCESS", cfg.Notifications.EmbedColors.Success)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
