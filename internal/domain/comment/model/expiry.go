package model

import (
	"fmt"
	"time"
)

type RemainingState int

const (
	NoExpiry RemainingState = iota
	Active
	Expired
)

func (s RemainingState) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return "none"
	}
}

// Remaining 剩余有效期，只在 State 为 Active 时 Left 有意义
type Remaining struct {
	State RemainingState `json:"-"`
	Left  time.Duration  `json:"-"`
}

// TimeRemaining 纯函数，每次读取时重新计算，不存储过期标记
func TimeRemaining(c Comment, now time.Time) Remaining {
	if c.ExpiresAt == nil {
		return Remaining{State: NoExpiry}
	}
	if !now.Before(*c.ExpiresAt) {
		return Remaining{State: Expired}
	}
	return Remaining{State: Active, Left: c.ExpiresAt.Sub(now)}
}

// Label 展示文案，按整小时向下取整
func (r Remaining) Label() string {
	switch r.State {
	case Active:
		return fmt.Sprintf("%dh remaining", int(r.Left/time.Hour))
	case Expired:
		return "expired"
	default:
		return ""
	}
}

// View 带剩余时间的评论
type View struct {
	Comment
	ExpiryLabel string `json:"expiryLabel,omitempty"`
	Expired     bool   `json:"expired"`
}

// ViewOf 读取时计算剩余时间
func ViewOf(c Comment, now time.Time) View {
	r := TimeRemaining(c, now)
	return View{Comment: c, ExpiryLabel: r.Label(), Expired: r.State == Expired}
}
