package model

import (
	"net/url"
	"strconv"
)

// DisplayURL 压缩媒体追加宽度参数，其余原样返回；URL 缺失或无法解析时返回占位图
func (m Media) DisplayURL(width int, placeholder string) string {
	if m.URL == "" {
		return placeholder
	}
	if !m.Compressed || width <= 0 {
		return m.URL
	}
	u, err := url.Parse(m.URL)
	if err != nil {
		return placeholder
	}
	q := u.Query()
	q.Set("w", strconv.Itoa(width))
	u.RawQuery = q.Encode()
	return u.String()
}

// MediaView 带展示地址的媒体
type MediaView struct {
	Media
	ThumbnailURL string `json:"thumbnailUrl"`
	FullURL      string `json:"fullUrl"`
}
