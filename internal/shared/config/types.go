package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	BaseURL  string `mapstructure:"base_url"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	Issuer           string `mapstructure:"issuer"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// GatewayConfig holds per-vendor endpoint settings. Secrets are never
// stored here; they come from the credential source.
type GatewayConfig struct {
	Sandbox bool   `mapstructure:"sandbox"`
	BaseURL string `mapstructure:"base_url"`
}

type PaymentConfig struct {
	DefaultReturnURL       string                   `mapstructure:"default_return_url"`
	WebhookDedupTTLMinutes int                      `mapstructure:"webhook_dedup_ttl_minutes"`
	StatusCacheTTLSeconds  int                      `mapstructure:"status_cache_ttl_seconds"`
	HTTPTimeoutSeconds     int                      `mapstructure:"http_timeout_seconds"`
	Credentials            map[string]string        `mapstructure:"credentials"`
	Gateways               map[string]GatewayConfig `mapstructure:"gateways"`
}

func (p *PaymentConfig) WebhookDedupTTL() time.Duration {
	return time.Duration(p.WebhookDedupTTLMinutes) * time.Minute
}

func (p *PaymentConfig) StatusCacheTTL() time.Duration {
	return time.Duration(p.StatusCacheTTLSeconds) * time.Second
}

func (p *PaymentConfig) HTTPTimeout() time.Duration {
	if p.HTTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.HTTPTimeoutSeconds) * time.Second
}

// Gateway returns the settings for provider, falling back to sandbox mode
// when the provider has no entry.
func (p *PaymentConfig) Gateway(provider string) GatewayConfig {
	if gc, ok := p.Gateways[provider]; ok {
		return gc
	}
	return GatewayConfig{Sandbox: true}
}

type SchedulerConfig struct {
	Enabled                      bool   `mapstructure:"enabled"`
	ExpiryCron                   string `mapstructure:"expiry_cron"`
	StatusRefreshIntervalMinutes int    `mapstructure:"status_refresh_interval_minutes"`
}
