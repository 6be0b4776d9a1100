// Package config はフラグ・環境変数・.env から実行設定を読み込みます。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 設定キー。cobra のフラグ名もこれに合わせます。
const (
	KeyAPIKey             = "api_key"
	KeyModel              = "model"
	KeyLocale             = "locale"
	KeyLogLevel           = "log_level"
	KeyBatchConcurrency   = "batch_concurrency"
	KeyMaxRetries         = "max_retries"
	KeyRetryInterval      = "retry_interval"
	KeyRequestsPerMinute  = "requests_per_minute"
	KeyCompressInput      = "compress_input"
	KeyCompressionQuality = "compression_quality"
	KeyHTTPTimeout        = "http_timeout"
	KeyCacheSize          = "cache_size"
	KeyCacheTTL           = "cache_ttl"
	KeyWatermarkFont      = "watermark_font"
)

// EnvPrefix は環境変数の接頭辞です (例: STUDIO_MODEL)。
const EnvPrefix = "STUDIO"

type Config struct {
	APIKey             string        `mapstructure:"api_key"`
	Model              string        `mapstructure:"model"`
	Locale             string        `mapstructure:"locale"`
	LogLevel           string        `mapstructure:"log_level"`
	BatchConcurrency   int           `mapstructure:"batch_concurrency"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryInterval      time.Duration `mapstructure:"retry_interval"`
	RequestsPerMinute  int           `mapstructure:"requests_per_minute"`
	CompressInput      bool          `mapstructure:"compress_input"`
	CompressionQuality int           `mapstructure:"compression_quality"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	CacheSize          int           `mapstructure:"cache_size"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	// WatermarkFont は透かしに使う TTF/OTF のパスです。空なら Go Bold を使います。
	WatermarkFont      string        `mapstructure:"watermark_font"`
}

// SetDefaults は v に既定値と環境変数の対応を登録します。
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyModel, "gemini-2.5-flash-image-preview")
	v.SetDefault(KeyLocale, "en")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyBatchConcurrency, 1)
	v.SetDefault(KeyMaxRetries, 0)
	v.SetDefault(KeyRetryInterval, 2*time.Second)
	v.SetDefault(KeyRequestsPerMinute, 0)
	v.SetDefault(KeyCompressInput, false)
	v.SetDefault(KeyCompressionQuality, 90)
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyCacheSize, 64)
	v.SetDefault(KeyCacheTTL, 10*time.Minute)
	v.SetDefault(KeyWatermarkFont, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// API キーは接頭辞なしの名前で渡されることが多い
	_ = v.BindEnv(KeyAPIKey, "GEMINI_API_KEY", "API_KEY")
}

// Load は v から設定を読み出して検証します。
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.WatermarkFont = strings.TrimSpace(c.WatermarkFont)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate は値の範囲を検証します。
func (c *Config) Validate() error {
	switch {
	case c.BatchConcurrency < 1:
		return fmt.Errorf("%s must be >= 1: %d", KeyBatchConcurrency, c.BatchConcurrency)
	case c.MaxRetries < 0:
		return fmt.Errorf("%s must be >= 0: %d", KeyMaxRetries, c.MaxRetries)
	case c.CompressionQuality < 1 || c.CompressionQuality > 100:
		return fmt.Errorf("%s must be in 1..100: %d", KeyCompressionQuality, c.CompressionQuality)
	case c.CacheSize < 1:
		return fmt.Errorf("%s must be >= 1: %d", KeyCacheSize, c.CacheSize)
	case c.RequestsPerMinute < 0:
		return fmt.Errorf("%s must be >= 0: %d", KeyRequestsPerMinute, c.RequestsPerMinute)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel は debug/info/warn/error を slog.Level に変換します。
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s is invalid: %q", KeyLogLevel, s)
	}
	return level, nil
}
