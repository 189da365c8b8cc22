package store

import (
	"context"
	"time"

	"github.com/clipcache/clipcache/internal/clip"
)

// Store 负责管理剪辑缓存目录的读写。磁盘布局遵循：
//
//	<StoragePath>/<id>-<sanitizedTitle>.mp4
//
// 每个条目仅由正文文件组成，可查询属性（id/标题/时间戳）全部从文件名与
// 文件系统元数据恢复，没有任何 sidecar 元数据文件。
type Store interface {
	// List 扫描目录并返回当前缓存目录的投影，按创建时间倒序。
	// 目录读取失败时降级为空目录并记录日志，绝不向调用方传播。
	List(ctx context.Context) []clip.Record

	// ResolveDownload 在子进程退出后查找以 <id>- 开头的落盘文件。
	// 干净退出但文件不存在同样视为未命中。
	ResolveDownload(id string) (string, bool)

	// Remove 删除指定的缓存文件。
	Remove(ctx context.Context, name string) error

	// Sweep 删除修改时间早于 maxAge 的缓存文件并返回删除数量。
	// 单个文件的读取/删除失败跳过并继续，保证保留策略尽力而为。
	Sweep(ctx context.Context, maxAge time.Duration) int

	// Dir 返回缓存目录的绝对路径。
	Dir() string

	// OutputTemplate 产出交给下载子进程的输出路径模板。
	OutputTemplate(base string) string

	// PublicURL 根据落盘文件名构造对外可访问的视频地址。
	PublicURL(name string) string
}
