package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCLIFlagsPriority(t *testing.T) {
	t.Setenv("CLIPCACHE_CONFIG", "/tmp/env.toml")

	opts, err := parseCLIFlags([]string{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", opts.configPath)
	}

	opts, err = parseCLIFlags([]string{"--config", "/tmp/flag.toml"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", opts.configPath)
	}
}

func TestParseCLIFlagsRejectsUnknown(t *testing.T) {
	if _, err := parseCLIFlags([]string{"--bogus"}); err == nil {
		t.Fatalf("未知参数应报错")
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "ListenPort = 3001\nStoragePath = \"" + filepath.Join(dir, "clips") + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	code := run(cliOptions{configPath: path, checkOnly: true})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d (stderr=%s)", code, stdErrBuffer().String())
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("ListenPort = 99999\n"), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	code := run(cliOptions{configPath: path, checkOnly: true})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "clipcache") {
		t.Fatalf("version 输出应包含 clipcache 标识")
	}
}
