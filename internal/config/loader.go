package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// 配置文件缺失不视为错误：原始部署大多只依赖环境变量与默认值。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 3001)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./downloaded_clips")
	v.SetDefault("VideoURLPath", "/clips/videos")
	v.SetDefault("UpstreamTimeout", "10s")
	v.SetDefault("DownloaderBinary", "yt-dlp")
	v.SetDefault("CacheMinEntries", 10)
	v.SetDefault("CacheMaxEntries", 20)
	v.SetDefault("RetentionAge", "48h")
	v.SetDefault("SweepInterval", 0)
	// 凭证默认空值必须注册，否则 Unmarshal 看不到仅由环境变量提供的键。
	v.SetDefault("TwitchClientID", "")
	v.SetDefault("TwitchClientSecret", "")
}

// bindEnv 将 Twitch 凭证绑定到环境变量，配合 godotenv 读取 .env 文件。
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("TwitchClientID", "TWITCH_CLIENT_ID")
	_ = v.BindEnv("TwitchClientSecret", "TWITCH_CLIENT_SECRET")
}

func applyDefaults(c *Config) {
	if c.ListenPort == 0 {
		c.ListenPort = 3001
	}
	if c.VideoURLPath == "" {
		c.VideoURLPath = "/clips/videos"
	}
	if c.UpstreamTimeout.DurationValue() == 0 {
		c.UpstreamTimeout = Duration(10 * time.Second)
	}
	if c.DownloaderBinary == "" {
		c.DownloaderBinary = "yt-dlp"
	}
	if c.RetentionAge.DurationValue() == 0 {
		c.RetentionAge = Duration(48 * time.Hour)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
