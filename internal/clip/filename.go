package clip

import (
	"regexp"
	"strings"
)

// Ext 是缓存目录唯一识别的媒体扩展名，yt-dlp 被强制 merge 为 mp4。
const Ext = ".mp4"

// maxTitleLen 限制清洗后标题参与文件名的长度。
const maxTitleLen = 30

var (
	unsafeChars   = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// SafeTitle 将展示标题清洗为可安全入文件名的形式：剔除特殊字符、折叠空白、
// 截断到 maxTitleLen 再去除首尾空格，最后以下划线代替空格。
// 截断发生在 trim 之前，顺序不可调换，否则与既有缓存文件名不一致。
func SafeTitle(title string) string {
	s := unsafeChars.ReplaceAllString(title, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	if len(s) > maxTitleLen {
		s = s[:maxTitleLen]
	}
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, " ", "_")
}

// BaseName 产出不含扩展名的落盘文件名 <id>-<sanitizedTitle>。
func BaseName(id, title string) string {
	return id + "-" + SafeTitle(title)
}

// ParseFilename 从文件名恢复剪辑身份与标题：第一个分隔符之前为 id，
// 其余部分去掉扩展名并把下划线还原为空格即为标题。
// 已知限制：若清洗后的标题自身以分隔符开头，解析出的标题会携带多余的
// 前导分隔符；该行为与既有缓存布局一致，刻意不做修正。
func ParseFilename(name string) (id, title string) {
	trimmed := strings.TrimSuffix(name, Ext)
	id = trimmed
	rest := trimmed
	if idx := strings.Index(trimmed, "-"); idx >= 0 {
		id = trimmed[:idx]
		rest = trimmed[idx+1:]
	}
	title = strings.ReplaceAll(rest, "_", " ")
	return id, title
}
