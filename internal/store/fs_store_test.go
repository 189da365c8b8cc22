package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s, err := NewStore(dir, "/clips/videos", logger)
	if err != nil {
		t.Fatalf("创建 store 失败: %v", err)
	}
	return s, dir
}

func writeClip(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	mod := time.Now().Add(-age)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("设置文件时间失败: %v", err)
	}
}

func TestListParsesAndOrdersNewestFirst(t *testing.T) {
	s, dir := newTestStore(t)
	writeClip(t, dir, "older-Old_Run.mp4", 2*time.Hour)
	writeClip(t, dir, "newer-Fresh_Run.mp4", time.Minute)
	writeClip(t, dir, "ignored.txt", time.Minute)

	records := s.List(context.Background())
	if len(records) != 2 {
		t.Fatalf("应只识别 mp4 条目，得到 %d", len(records))
	}
	if records[0].ID != "newer" || records[1].ID != "older" {
		t.Fatalf("应按创建时间倒序: %s, %s", records[0].ID, records[1].ID)
	}

	first := records[0]
	if first.Title != "Fresh Run" {
		t.Fatalf("标题还原失败: %q", first.Title)
	}
	if first.Creator != "Cached" || first.Views != 0 || first.Duration != 30 {
		t.Fatalf("缓存来源记录默认值错误: %+v", first)
	}
	if !first.Cached {
		t.Fatalf("目录扫描产生的记录应标记 cached")
	}
	if first.LocalURL != "/clips/videos/newer-Fresh_Run.mp4" {
		t.Fatalf("LocalURL 构造错误: %s", first.LocalURL)
	}
}

func TestListIsIdempotentWithoutChanges(t *testing.T) {
	s, dir := newTestStore(t)
	writeClip(t, dir, "a-First.mp4", time.Hour)
	writeClip(t, dir, "b-Second.mp4", time.Minute)

	first := s.List(context.Background())
	second := s.List(context.Background())
	if len(first) != len(second) {
		t.Fatalf("两次扫描条目数不一致: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].LocalFile != second[i].LocalFile {
			t.Fatalf("两次扫描顺序不一致: %+v vs %+v", first[i], second[i])
		}
	}
}

func TestListDegradesToEmptyOnMissingDir(t *testing.T) {
	s, dir := newTestStore(t)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("删除目录失败: %v", err)
	}
	if records := s.List(context.Background()); len(records) != 0 {
		t.Fatalf("目录不可读时应返回空目录，得到 %d 条", len(records))
	}
}

func TestResolveDownloadFindsPrefix(t *testing.T) {
	s, dir := newTestStore(t)
	writeClip(t, dir, "target-Some_Clip.mp4", time.Minute)
	writeClip(t, dir, "other-Another.mp4", time.Minute)

	name, ok := s.ResolveDownload("target")
	if !ok || name != "target-Some_Clip.mp4" {
		t.Fatalf("应命中前缀文件，得到 %q ok=%v", name, ok)
	}

	if _, ok := s.ResolveDownload("missing"); ok {
		t.Fatalf("不存在的 id 不应命中")
	}
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	s, dir := newTestStore(t)
	writeClip(t, dir, "old-Gone.mp4", 49*time.Hour)
	writeClip(t, dir, "young-Stays.mp4", 47*time.Hour)
	writeClip(t, dir, "note.txt", 100*time.Hour)

	deleted := s.Sweep(context.Background(), 48*time.Hour)
	if deleted != 1 {
		t.Fatalf("应恰好删除 1 个文件，得到 %d", deleted)
	}
	if _, err := os.Stat(filepath.Join(dir, "old-Gone.mp4")); !os.IsNotExist(err) {
		t.Fatalf("过期文件应被删除")
	}
	if _, err := os.Stat(filepath.Join(dir, "young-Stays.mp4")); err != nil {
		t.Fatalf("未过期文件不应被删除: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "note.txt")); err != nil {
		t.Fatalf("非媒体文件不应被清理: %v", err)
	}
}

func TestRemoveRejectsPathEscape(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Remove(context.Background(), "../outside.mp4"); err == nil {
		t.Fatalf("目录逃逸应被拒绝")
	}
}

func TestOutputTemplateUsesExtPlaceholder(t *testing.T) {
	s, dir := newTestStore(t)
	got := s.OutputTemplate("abc-Title")
	want := filepath.Join(dir, "abc-Title.%(ext)s")
	if got != want {
		t.Fatalf("模板错误: %q，期望 %q", got, want)
	}
}
