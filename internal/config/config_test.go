package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ListenPort:       3001,
		LogLevel:         "info",
		StoragePath:      "./downloaded_clips",
		VideoURLPath:     "/clips/videos",
		UpstreamTimeout:  Duration(10 * time.Second),
		DownloaderBinary: "yt-dlp",
		CacheMinEntries:  10,
		CacheMaxEntries:  20,
		RetentionAge:     Duration(48 * time.Hour),
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认配置应通过校验: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := validConfig()
	cfg.ListenPort = 70000
	assertFieldError(t, cfg.Validate(), "ListenPort")
}

func TestValidateRejectsMinAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.CacheMinEntries = 30
	assertFieldError(t, cfg.Validate(), "CacheMinEntries")
}

func TestValidateRejectsRelativeVideoPath(t *testing.T) {
	cfg := validConfig()
	cfg.VideoURLPath = "clips"
	assertFieldError(t, cfg.Validate(), "VideoURLPath")
}

func TestValidateRejectsHalfCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.TwitchClientID = "only-id"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("单边凭证应校验失败")
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if d.DurationValue() != 90*time.Second {
		t.Fatalf("期望 90s，得到 %v", d.DurationValue())
	}
	if err := d.UnmarshalText([]byte("15")); err != nil {
		t.Fatalf("纯数字解析失败: %v", err)
	}
	if d.DurationValue() != 15*time.Second {
		t.Fatalf("期望 15s，得到 %v", d.DurationValue())
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("期望字段 %s 校验失败", field)
	}
	var fieldErr FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("期望 FieldError，得到 %T", err)
	}
	if fieldErr.Field != field {
		t.Fatalf("期望字段 %s，得到 %s", field, fieldErr.Field)
	}
}
