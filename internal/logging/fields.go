package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// FetchFields 提供主播/时间窗口/命中状态字段，供拉取请求日志复用。
func FetchFields(username, period string, limit int, cached bool) logrus.Fields {
	return logrus.Fields{
		"username": username,
		"period":   period,
		"limit":    limit,
		"cached":   cached,
	}
}
