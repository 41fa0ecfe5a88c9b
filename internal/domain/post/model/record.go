package model

import (
	"time"

	baseModel "social_moderation/pkg/model"
)

// DefaultRejectionReason 管理员未填写原因时使用
const DefaultRejectionReason = "Content does not meet community guidelines"

// ModerationRecord 本地审核台账：提交记录与审核结论
// 远端没有拒绝接口，拒绝结论以本表为准
type ModerationRecord struct {
	baseModel.BaseModel
	PostID      string     `gorm:"size:64;uniqueIndex" json:"postId"`
	UserID      string     `gorm:"size:64;index" json:"userId"`
	Caption     string     `gorm:"type:text" json:"caption"`
	MediaURLs   string     `gorm:"type:text" json:"-"` // 换行分隔
	Status      Status     `gorm:"size:16;index" json:"status"`
	Reason      string     `gorm:"type:text" json:"reason,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  string     `gorm:"size:64" json:"reviewedBy,omitempty"`
}

func (ModerationRecord) TableName() string {
	return "moderation_records"
}

// Stats 管理后台统计
type Stats struct {
	Pending          int64 `json:"pending" db:"pending"`
	ApprovedToday    int64 `json:"approvedToday" db:"approved_today"`
	RejectedToday    int64 `json:"rejectedToday" db:"rejected_today"`
	TotalSubmissions int64 `json:"totalSubmissions" db:"total"`
}

// Submission 提交历史中的一条
type Submission struct {
	ID          string    `json:"id"`
	PostID      string    `json:"postId"`
	Caption     string    `json:"caption"`
	Status      Status    `json:"status"`
	Badge       Badge     `json:"badge"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// ApplyRecord 台账中的审核结论覆盖远端状态，仍待审核的台账记录不覆盖
func (p *Post) ApplyRecord(rec *ModerationRecord) {
	if rec == nil || rec.Status == "" || rec.Status == StatusPending {
		return
	}
	p.Status = rec.Status
	p.RejectionReason = rec.Reason
	p.ReviewedAt = rec.ReviewedAt
	p.ReviewedBy = rec.ReviewedBy
}
