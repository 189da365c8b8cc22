package clip

import "time"

// DefaultDuration 是缓存来源记录的占位时长（秒）：文件名中不携带时长信息。
const DefaultDuration = 30

// Record 表示一条剪辑记录。内存中的 Record 永远是目录扫描或上游响应的
// 投影，不跨请求驻留。
type Record struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Creator string `json:"creator"`
	// Duration 单位为秒；缓存来源记录使用 DefaultDuration 占位。
	Duration int `json:"duration"`
	Views    int `json:"views"`
	// SourceURL 仅在尚未落盘的上游候选上存在。
	SourceURL string `json:"url,omitempty"`
	// LocalFile/LocalURL 在剪辑落盘后填充。
	LocalFile string    `json:"localFile,omitempty"`
	LocalURL  string    `json:"localUrl,omitempty"`
	Created   time.Time `json:"created"`
	// Cached 区分目录扫描产生的记录与刚从上游拉取的记录。
	Cached bool `json:"cached"`
}

// Materialized 表示记录是否已有落盘文件。
func (r Record) Materialized() bool {
	return r.LocalFile != ""
}
