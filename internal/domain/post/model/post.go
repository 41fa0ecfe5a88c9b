package model

import (
	"strings"
	"time"

	commentModel "social_moderation/internal/domain/comment/model"
	userModel "social_moderation/internal/domain/user/model"
)

// Status 审核状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus 远端状态字符串转换，缺失或无法识别时视为待审核
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusApproved:
		return StatusApproved
	case StatusRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// MediaType 媒体类型
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Media 帖子附带的媒体，创建后不可变
type Media struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Type       MediaType `json:"type"`
	Compressed bool      `json:"compressed"`
}

// Engagement 互动数据，远端部分查询不返回
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// Post 帖子
type Post struct {
	ID              string                 `json:"id"`
	Caption         string                 `json:"caption"`
	Media           []Media                `json:"media"`
	Author          userModel.User         `json:"author"`
	CreatedAt       time.Time              `json:"createdAt"`
	Status          Status                 `json:"status"`
	RejectionReason string                 `json:"rejectionReason,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewedAt,omitempty"`
	ReviewedBy      string                 `json:"reviewedBy,omitempty"`
	Comments        []commentModel.Comment `json:"comments"`
	Engagement      *Engagement            `json:"engagement,omitempty"`
}

// Badge 状态标签
type Badge struct {
	Label       string `json:"label"`
	VisualClass string `json:"visualClass"`
}

// StatusBadge 状态到展示标签的映射
func StatusBadge(p Post) Badge {
	switch p.Status {
	case StatusApproved:
		return Badge{Label: "Approved", VisualClass: "success"}
	case StatusRejected:
		return Badge{Label: "Rejected", VisualClass: "danger"}
	default:
		return Badge{Label: "Pending Approval", VisualClass: "warning"}
	}
}
