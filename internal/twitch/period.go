package twitch

import (
	"strings"
	"time"
)

// Period 表示剪辑热度统计的时间窗口。
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod 归一化时间窗口取值，未识别的输入回退到默认的 week。
func ParsePeriod(raw string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodDay:
		return PeriodDay
	case PeriodWeek:
		return PeriodWeek
	case PeriodMonth:
		return PeriodMonth
	case PeriodAll:
		return PeriodAll
	default:
		return PeriodWeek
	}
}

// Start 计算窗口起始时间；PeriodAll 返回零值表示不限制。
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}
