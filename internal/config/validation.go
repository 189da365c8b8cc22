package config

import (
	"errors"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if c.StoragePath == "" {
		return newFieldError("StoragePath", "不能为空")
	}
	if !strings.HasPrefix(c.VideoURLPath, "/") {
		return newFieldError("VideoURLPath", "必须以 / 开头")
	}
	if c.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("UpstreamTimeout", "必须大于 0")
	}
	if c.DownloaderBinary == "" {
		return newFieldError("DownloaderBinary", "不能为空")
	}
	if c.CacheMinEntries < 0 {
		return newFieldError("CacheMinEntries", "不能为负数")
	}
	if c.CacheMaxEntries <= 0 {
		return newFieldError("CacheMaxEntries", "必须大于 0")
	}
	if c.CacheMinEntries > c.CacheMaxEntries {
		return newFieldError("CacheMinEntries", "不能大于 CacheMaxEntries")
	}
	if c.RetentionAge.DurationValue() <= 0 {
		return newFieldError("RetentionAge", "必须大于 0")
	}
	if c.SweepInterval.DurationValue() < 0 {
		return newFieldError("SweepInterval", "不能为负数")
	}
	if (c.TwitchClientID == "") != (c.TwitchClientSecret == "") {
		return newFieldError("TwitchClientID/TwitchClientSecret", "必须同时提供或同时留空")
	}

	return nil
}
