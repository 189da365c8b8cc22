package downloader

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clipcache/clipcache/internal/clip"
	"github.com/clipcache/clipcache/internal/store"
)

// formatSelector 要求带音轨的 mp4，逐级回退到任何带音轨的格式。
const formatSelector = "best[ext=mp4][acodec!=none]/best[acodec!=none]/best"

var (
	// ErrInFlight 表示同一剪辑已有下载在进行，本次调用被跳过。
	ErrInFlight = errors.New("clip download already in flight")
	// ErrNotMaterialized 表示子进程干净退出但目录里找不到落盘文件。
	ErrNotMaterialized = errors.New("download did not materialize")
)

// Fetcher 是编排层依赖的下载能力：把一个上游候选落盘并返回文件名。
// 所有失败对调用方是同一种含义——跳过该剪辑。
type Fetcher interface {
	Fetch(ctx context.Context, rec clip.Record) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return errBuf.String(), err
}

// Option configures the downloader.
type Option func(*YTDLP)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(d *YTDLP) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// YTDLP 通过外部 yt-dlp 子进程实现 Fetcher。
type YTDLP struct {
	binary   string
	store    store.Store
	logger   *logrus.Logger
	exec     Executor
	inflight *inflightRegistry
}

// NewYTDLP 构造下载器；binary 为空时回退到 PATH 中的 yt-dlp。
func NewYTDLP(binary string, s store.Store, logger *logrus.Logger, opts ...Option) (*YTDLP, error) {
	if s == nil {
		return nil, errors.New("store required")
	}
	if logger == nil {
		return nil, errors.New("logger required")
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "yt-dlp"
	}

	d := &YTDLP{
		binary:   binary,
		store:    s,
		logger:   logger,
		exec:     commandExecutor{},
		inflight: newInflightRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Fetch 将候选剪辑落盘。调用阻塞到子进程结束，子进程本身不设超时。
func (d *YTDLP) Fetch(ctx context.Context, rec clip.Record) (string, error) {
	if rec.ID == "" || rec.SourceURL == "" {
		return "", errors.New("candidate requires id and source url")
	}

	if !d.inflight.acquire(rec.ID) {
		d.logger.WithFields(logrus.Fields{
			"action": "download_skip",
			"clip":   rec.ID,
		}).Info("同一剪辑已有下载在进行，跳过")
		return "", ErrInFlight
	}
	defer d.inflight.release(rec.ID)

	base := clip.BaseName(rec.ID, rec.Title)
	template := d.store.OutputTemplate(base)

	args := []string{
		"--format", formatSelector,
		"--output", template,
		"--no-playlist",
		"--no-warnings",
		"--restrict-filenames",
		"--merge-output-format", "mp4",
		"--embed-metadata",
		"--audio-quality", "0",
		rec.SourceURL,
	}

	d.logger.WithFields(logrus.Fields{
		"action": "download_start",
		"clip":   rec.ID,
		"title":  rec.Title,
	}).Info("开始下载剪辑")

	stderr, err := d.exec.Run(ctx, d.binary, args)
	if err != nil {
		// stderr 只进日志，不向上层暴露结构化细节。
		d.logger.WithError(err).WithFields(logrus.Fields{
			"action": "download_failed",
			"clip":   rec.ID,
			"url":    rec.SourceURL,
			"stderr": strings.TrimSpace(stderr),
		}).Warn("yt-dlp 执行失败")
		return "", err
	}

	name, ok := d.store.ResolveDownload(rec.ID)
	if !ok {
		d.logger.WithFields(logrus.Fields{
			"action": "download_missing",
			"clip":   rec.ID,
		}).Warn("子进程成功退出但未找到落盘文件")
		return "", ErrNotMaterialized
	}

	d.logger.WithFields(logrus.Fields{
		"action": "download_done",
		"clip":   rec.ID,
		"file":   name,
	}).Info("剪辑下载完成")
	return name, nil
}
