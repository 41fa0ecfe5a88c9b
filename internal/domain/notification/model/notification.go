package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"social_moderation/pkg/utils"
)

// Kind 通知类型，决定前端图标
type Kind string

const (
	KindPostApproved Kind = "post_approved"
	KindPostRejected Kind = "post_rejected"
	KindComment      Kind = "comment"
	KindLike         Kind = "like"
	KindFollow       Kind = "follow"
	KindOther        Kind = "other"
)

// ParseKind 未知类型归为 other
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPostApproved, KindPostRejected, KindComment, KindLike, KindFollow:
		return k
	default:
		return KindOther
	}
}

// Notification 通知，已读状态只能从 false 变为 true
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      Kind      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	ActionURL string    `json:"actionUrl,omitempty"`
}

// View 带相对时间
type View struct {
	Notification
	TimeLabel string `json:"timeLabel"`
}

// Inbox 通知列表
type Inbox struct {
	Items       []View `json:"items"`
	UnreadCount int    `json:"unreadCount"`
	Summary     string `json:"summary"`
}

// SummaryOf 未读数提示文案
func SummaryOf(unread int) string {
	switch unread {
	case 0:
		return "You're all caught up!"
	case 1:
		return "You have 1 unread notification"
	default:
		return fmt.Sprintf("You have %d unread notifications", unread)
	}
}

// NewInbox 按时间倒序，时间未知的排最后
func NewInbox(items []Notification, now time.Time) Inbox {
	out := Inbox{Items: make([]View, len(items))}
	for i, n := range items {
		out.Items[i] = View{Notification: n, TimeLabel: utils.TimeAgo(n.CreatedAt, now)}
		if !n.Read {
			out.UnreadCount++
		}
	}
	out.Summary = SummaryOf(out.UnreadCount)
	sort.SliceStable(out.Items, func(i, j int) bool {
		a, b := out.Items[i].CreatedAt, out.Items[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return out
}
