package model

import (
	"time"

	userModel "social_moderation/internal/domain/user/model"
)

// AudioTTL 语音评论的有效期
const AudioTTL = 48 * time.Hour

// Kind 评论类型，对应远端 addComment 的 type 参数
type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
)

// Comment 评论，ExpiresAt 仅语音评论有值且恒等于 CreatedAt + 48h
type Comment struct {
	ID        string         `json:"id"`
	PostID    string         `json:"postId"`
	Author    userModel.User `json:"author"`
	Content   string         `json:"content,omitempty"`
	AudioURL  string         `json:"audioUrl,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	// DurationSeconds 录音时长，只在刚创建时已知
	DurationSeconds int `json:"durationSeconds,omitempty"`
}

// Kind 有音频即为语音评论
func (c Comment) Kind() Kind {
	if c.AudioURL != "" {
		return KindAudio
	}
	return KindText
}

// Normalize 按类型重新计算 ExpiresAt，远端返回的值不被信任
// 创建时间未知的语音评论视为已过期
func (c *Comment) Normalize() {
	if c.AudioURL == "" {
		c.ExpiresAt = nil
		return
	}
	exp := c.CreatedAt.Add(AudioTTL)
	c.ExpiresAt = &exp
}
