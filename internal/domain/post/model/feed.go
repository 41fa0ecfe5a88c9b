package model

import "sort"

// AssembleFeed 按创建时间倒序稳定排序，时间未知的帖子排在最后
// 不修改入参
func AssembleFeed(posts []Post) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return out
}

// FilterVisible 按查看者过滤
func FilterVisible(posts []Post, v Viewer) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if Visible(p, v) {
			out = append(out, Redact(p, v))
		}
	}
	return out
}
