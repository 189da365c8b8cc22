package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clipcache/clipcache/internal/clip"
)

// NewStore 以 basePath 为根目录构建磁盘缓存，整站复用一份实例。
// 目录不存在时自动创建，与原始部署行为一致。
func NewStore(basePath, videoURLPath string, logger *logrus.Logger) (Store, error) {
	if basePath == "" {
		return nil, errors.New("storage path required")
	}
	if logger == nil {
		return nil, errors.New("logger required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}

	return &fileStore{
		basePath:     abs,
		videoURLPath: strings.TrimSuffix(videoURLPath, "/"),
		logger:       logger,
	}, nil
}

type fileStore struct {
	basePath     string
	videoURLPath string
	logger       *logrus.Logger
}

func (s *fileStore) List(ctx context.Context) []clip.Record {
	select {
	case <-ctx.Done():
		return nil
	default:
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_scan",
			"dir":    s.basePath,
		}).Warn("读取缓存目录失败，按空缓存处理")
		return nil
	}

	var records []clip.Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), clip.Ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.WithError(err).WithField("file", entry.Name()).Warn("读取文件信息失败，跳过")
			continue
		}

		id, title := clip.ParseFilename(entry.Name())
		records = append(records, clip.Record{
			ID:        id,
			Title:     title,
			Creator:   "Cached",
			Duration:  clip.DefaultDuration,
			Views:     0,
			LocalFile: entry.Name(),
			LocalURL:  s.PublicURL(entry.Name()),
			Created:   info.ModTime(),
			Cached:    true,
		})
	}

	// 最新的排在最前。
	sort.Slice(records, func(i, j int) bool {
		return records[i].Created.After(records[j].Created)
	})
	return records
}

func (s *fileStore) ResolveDownload(id string) (string, bool) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		s.logger.WithError(err).WithField("action", "resolve_download").Warn("读取缓存目录失败")
		return "", false
	}

	prefix := id + "-"
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			return entry.Name(), true
		}
	}
	return "", false
}

func (s *fileStore) Remove(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path, err := s.entryPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *fileStore) Sweep(ctx context.Context, maxAge time.Duration) int {
	select {
	case <-ctx.Done():
		return 0
	default:
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		s.logger.WithError(err).WithField("action", "sweep").Warn("读取缓存目录失败，跳过本轮清理")
		return 0
	}

	now := time.Now()
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), clip.Ext) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.WithError(err).WithField("file", entry.Name()).Warn("读取文件信息失败，跳过")
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		path, err := s.entryPath(entry.Name())
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).WithField("file", entry.Name()).Warn("删除过期剪辑失败，跳过")
			continue
		}
		deleted++
		s.logger.WithFields(logrus.Fields{
			"action": "sweep_delete",
			"file":   entry.Name(),
		}).Info("已删除过期剪辑")
	}
	return deleted
}

func (s *fileStore) Dir() string {
	return s.basePath
}

// OutputTemplate 使用 yt-dlp 的 %(ext)s 占位符，由子进程决定最终扩展名。
func (s *fileStore) OutputTemplate(base string) string {
	return filepath.Join(s.basePath, base+".%(ext)s")
}

func (s *fileStore) PublicURL(name string) string {
	return s.videoURLPath + "/" + url.PathEscape(name)
}

// entryPath 拒绝目录逃逸：传入的 name 必须是单纯的文件名。
func (s *fileStore) entryPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid cache entry name: %s", name)
	}
	return filepath.Join(s.basePath, name), nil
}
