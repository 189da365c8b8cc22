package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// Config 是 TOML 文件映射的整体结构，所有组件共享同一份参数。
type Config struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`

	// StoragePath 是剪辑缓存目录，也是整个服务唯一的持久化状态。
	StoragePath string `mapstructure:"StoragePath"`
	// VideoURLPath 是对外暴露的静态视频路径前缀，需与反向代理配置一致。
	VideoURLPath string `mapstructure:"VideoURLPath"`

	UpstreamTimeout  Duration `mapstructure:"UpstreamTimeout"`
	DownloaderBinary string   `mapstructure:"DownloaderBinary"`

	// CacheMinEntries 为快速路径阈值：缓存条目不少于该值时不再回源。
	// CacheMaxEntries 为响应条目硬上限。
	CacheMinEntries int `mapstructure:"CacheMinEntries"`
	CacheMaxEntries int `mapstructure:"CacheMaxEntries"`

	RetentionAge  Duration `mapstructure:"RetentionAge"`
	SweepInterval Duration `mapstructure:"SweepInterval"`

	// Twitch 凭证为可选的服务端兜底；请求 query 里的凭证优先。
	TwitchClientID     string `mapstructure:"TwitchClientID"`
	TwitchClientSecret string `mapstructure:"TwitchClientSecret"`
}

// HasCredentials 表示配置中是否带有完整的上游凭证兜底。
func (c *Config) HasCredentials() bool {
	return c.TwitchClientID != "" && c.TwitchClientSecret != ""
}

// AuthMode 输出 `credentialed` 或 `anonymous`，供启动日志字段使用。
func (c *Config) AuthMode() string {
	if c.HasCredentials() {
		return "credentialed"
	}
	return "anonymous"
}
