package config

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/jxo-me/ddnsync/consts"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFilePathENV = "DDNS_CONFIG_FILE_PATH"
	EnvPrefix         = "DDNS"
)

var (
	global = &atomic.Value{}

	ErrNoDomains = errors.New("no domains configured")
)

func init() {
	global.Store(&Config{})
}

func Global() *Config {
	return global.Load().(*Config)
}

func Set(c *Config) {
	if c == nil {
		c = &Config{}
	}
	global.Store(c)
}

type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size" yaml:"max_size,omitempty" json:"max_size,omitempty"`
	MaxAge     int  `mapstructure:"max_age" yaml:"max_age,omitempty" json:"max_age,omitempty"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups,omitempty" json:"max_backups,omitempty"`
	LocalTime  bool `mapstructure:"local_time" yaml:"local_time,omitempty" json:"local_time,omitempty"`
	Compress   bool `mapstructure:"compress" yaml:"compress,omitempty" json:"compress,omitempty"`
}

type LogConfig struct {
	// stderr, stdout, none or a file path
	Output   string             `mapstructure:"output" yaml:",omitempty" json:"output,omitempty"`
	Level    string             `mapstructure:"level" yaml:",omitempty" json:"level,omitempty"`
	Format   string             `mapstructure:"format" yaml:",omitempty" json:"format,omitempty"`
	Rotation *LogRotationConfig `mapstructure:"rotation" yaml:",omitempty" json:"rotation,omitempty"`
}

type TelegramConfig struct {
	BotToken  string `mapstructure:"bot_token" yaml:"bot_token,omitempty" json:"bot_token,omitempty"`
	ChatID    string `mapstructure:"chat_id" yaml:"chat_id,omitempty" json:"chat_id,omitempty"`
	HTTPProxy string `mapstructure:"http_proxy" yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
}

// Enabled reports whether both the bot token and the chat are known.
func (t *TelegramConfig) Enabled() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

type WebhookConfig struct {
	// 支持的变量 #{domain}, #{newIp}, #{oldIp}, #{status}
	URL string `mapstructure:"url" yaml:"url,omitempty" json:"url,omitempty"`
	// 如 RequestBody 为空则为 GET 请求，否则为 POST 请求。支持的变量同上
	RequestBody string `mapstructure:"request_body" yaml:"request_body,omitempty" json:"request_body,omitempty"`
	// 一行一个Header, 如：Authorization: Bearer API_KEY
	Headers string `mapstructure:"headers" yaml:"headers,omitempty" json:"headers,omitempty"`
}

// DomainConfig is one [[domains]] entry as written by the operator.
type DomainConfig struct {
	Domain          string `mapstructure:"domain" yaml:"domain" json:"domain"`
	Provider        string `mapstructure:"provider" yaml:"provider,omitempty" json:"provider,omitempty"`
	DnspodToken     string `mapstructure:"dnspod_token" yaml:"dnspod_token,omitempty" json:"dnspod_token,omitempty"`
	CloudflareToken string `mapstructure:"cloudflare_token" yaml:"cloudflare_token,omitempty" json:"cloudflare_token,omitempty"`
	AccountID       string `mapstructure:"account_id" yaml:"account_id,omitempty" json:"account_id,omitempty"`
	IPURL           string `mapstructure:"ip_url" yaml:"ip_url,omitempty" json:"ip_url,omitempty"`
	HookCommand     string `mapstructure:"hook_command" yaml:"hook_command,omitempty" json:"hook_command,omitempty"`
	RecordType      string `mapstructure:"record_type" yaml:"record_type,omitempty" json:"record_type,omitempty"`
}

type Config struct {
	// 间隔时间（秒）
	SleepSecs int `mapstructure:"sleep_secs" yaml:"sleep_secs" json:"sleep_secs"`
	// 每隔几次强制从服务商获取最新的记录
	ForceGetRecordInterval int `mapstructure:"force_get_record_interval" yaml:"force_get_record_interval" json:"force_get_record_interval"`
	Concurrency            int `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
	HookTimeoutSecs        int `mapstructure:"hook_timeout_secs" yaml:"hook_timeout_secs" json:"hook_timeout_secs"`

	DefaultProvider        string `mapstructure:"default_provider" yaml:"default_provider" json:"default_provider"`
	DefaultDnspodToken     string `mapstructure:"default_dnspod_token" yaml:"default_dnspod_token,omitempty" json:"default_dnspod_token,omitempty"`
	DefaultCloudflareToken string `mapstructure:"default_cloudflare_token" yaml:"default_cloudflare_token,omitempty" json:"default_cloudflare_token,omitempty"`
	CloudflareAccountID    string `mapstructure:"cloudflare_account_id" yaml:"cloudflare_account_id,omitempty" json:"cloudflare_account_id,omitempty"`
	DefaultIPURL           string `mapstructure:"default_ip_url" yaml:"default_ip_url" json:"default_ip_url"`
	DefaultHookCommand     string `mapstructure:"default_hook_command" yaml:"default_hook_command,omitempty" json:"default_hook_command,omitempty"`

	Log      *LogConfig      `mapstructure:"log" yaml:",omitempty" json:"log,omitempty"`
	Telegram *TelegramConfig `mapstructure:"telegram" yaml:",omitempty" json:"telegram,omitempty"`
	Webhook  *WebhookConfig  `mapstructure:"webhook" yaml:",omitempty" json:"webhook,omitempty"`
	Domains  []DomainConfig  `mapstructure:"domains" yaml:"domains" json:"domains"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("sleep_secs", consts.DefaultSleepSecs)
	v.SetDefault("force_get_record_interval", consts.DefaultForceGetRecordInterval)
	v.SetDefault("concurrency", consts.DefaultConcurrency)
	v.SetDefault("hook_timeout_secs", consts.DefaultHookTimeoutSecs)
	v.SetDefault("default_provider", consts.DefaultProvider)
	v.SetDefault("default_ip_url", consts.DefaultIPURL)
	v.SetDefault("default_dnspod_token", "")
	v.SetDefault("default_cloudflare_token", "")
	v.SetDefault("cloudflare_account_id", "")
	v.SetDefault("default_hook_command", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads a TOML (or any viper supported) file into c.
func (c *Config) ReadFile(file string) error {
	v := newViper()
	v.SetConfigFile(file)
	if filepath.Ext(file) == "" {
		v.SetConfigType("toml")
	}
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", file)
	}
	return c.load(v)
}

// Read loads the configuration from r, format is any viper config type.
func (c *Config) Read(r io.Reader, format string) error {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return errors.Wrap(err, "failed to parse config")
	}
	return c.load(v)
}

func (c *Config) load(v *viper.Viper) error {
	if err := v.Unmarshal(c); err != nil {
		return errors.Wrap(err, "failed to decode config")
	}
	return nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return ErrNoDomains
	}
	if c.SleepSecs < 1 {
		return errors.Errorf("sleep_secs must be at least 1, got %d", c.SleepSecs)
	}
	if c.ForceGetRecordInterval < 1 {
		return errors.Errorf("force_get_record_interval must be at least 1, got %d", c.ForceGetRecordInterval)
	}
	for i := range c.Domains {
		if _, err := NewDomainTarget(&c.Domains[i], c); err != nil {
			return errors.Wrapf(err, "domain %d", i+1)
		}
	}
	return nil
}

// Targets builds one DomainTarget per configured domain, in file order.
func (c *Config) Targets() ([]*DomainTarget, error) {
	targets := make([]*DomainTarget, 0, len(c.Domains))
	for i := range c.Domains {
		t, err := NewDomainTarget(&c.Domains[i], c)
		if err != nil {
			return nil, errors.Wrapf(err, "domain %d", i+1)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// Write dumps the effective configuration in yaml or json.
func (c *Config) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(c)
	default:
		return errors.Errorf("unsupported output format %q", format)
	}
}
