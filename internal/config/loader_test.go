package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("缺失配置文件应回退默认值: %v", err)
	}
	if cfg.ListenPort != 3001 {
		t.Fatalf("默认端口应为 3001，得到 %d", cfg.ListenPort)
	}
	if cfg.CacheMinEntries != 10 || cfg.CacheMaxEntries != 20 {
		t.Fatalf("默认缓存阈值应为 10/20，得到 %d/%d", cfg.CacheMinEntries, cfg.CacheMaxEntries)
	}
	if cfg.UpstreamTimeout.DurationValue() != 10*time.Second {
		t.Fatalf("默认上游超时应为 10s，得到 %v", cfg.UpstreamTimeout.DurationValue())
	}
	if cfg.RetentionAge.DurationValue() != 48*time.Hour {
		t.Fatalf("默认保留时长应为 48h，得到 %v", cfg.RetentionAge.DurationValue())
	}
	if cfg.DownloaderBinary != "yt-dlp" {
		t.Fatalf("默认下载器应为 yt-dlp，得到 %s", cfg.DownloaderBinary)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeTempConfig(t, `
ListenPort = 8080
LogLevel = "debug"
StoragePath = "./clips"
VideoURLPath = "/videos"
UpstreamTimeout = "5s"
RetentionAge = "24h"
CacheMinEntries = 5
CacheMaxEntries = 12
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.ListenPort != 8080 {
		t.Fatalf("端口覆盖失败，得到 %d", cfg.ListenPort)
	}
	if cfg.UpstreamTimeout.DurationValue() != 5*time.Second {
		t.Fatalf("超时覆盖失败，得到 %v", cfg.UpstreamTimeout.DurationValue())
	}
	if cfg.CacheMinEntries != 5 || cfg.CacheMaxEntries != 12 {
		t.Fatalf("阈值覆盖失败，得到 %d/%d", cfg.CacheMinEntries, cfg.CacheMaxEntries)
	}
	if !filepath.IsAbs(cfg.StoragePath) {
		t.Fatalf("StoragePath 应被解析为绝对路径: %s", cfg.StoragePath)
	}
}

func TestLoadBareSecondsDuration(t *testing.T) {
	path := writeTempConfig(t, `UpstreamTimeout = 3`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.UpstreamTimeout.DurationValue() != 3*time.Second {
		t.Fatalf("纯数字应按秒解析，得到 %v", cfg.UpstreamTimeout.DurationValue())
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeTempConfig(t, `RetentionAge = "boom"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("TWITCH_CLIENT_ID", "env-id")
	t.Setenv("TWITCH_CLIENT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if !cfg.HasCredentials() {
		t.Fatalf("应从环境变量读取凭证")
	}
	if cfg.TwitchClientID != "env-id" || cfg.TwitchClientSecret != "env-secret" {
		t.Fatalf("凭证不匹配: %s/%s", cfg.TwitchClientID, cfg.TwitchClientSecret)
	}
}
