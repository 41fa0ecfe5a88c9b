package utils

import (
	"fmt"
	"time"
)

// UnknownTimeLabel 无法解析的时间显示文案
const UnknownTimeLabel = "time unknown"

// ParseTimestamp 宽松解析远端返回的时间字符串
// 支持 RFC3339 和毫秒级 unix 时间戳，失败返回零值而不是报错
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	var ms int64
	if _, err := fmt.Sscanf(s, "%d", &ms); err == nil && fmt.Sprint(ms) == s && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// TimeAgo 相对时间文案：Just now / 5m ago / 3h ago / 2d ago
// 零值返回 "time unknown"
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return UnknownTimeLabel
	}
	diff := now.Sub(t)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", days)
	}
}
