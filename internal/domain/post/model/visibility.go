package model

// Viewer 查看者，只需要身份和角色
type Viewer interface {
	CanView(ownerID string) bool
}

// Visible 已通过对所有人可见；待审核和已拒绝只对作者和管理员可见
func Visible(p Post, v Viewer) bool {
	if p.Status == StatusApproved {
		return true
	}
	return v.CanView(p.Author.ID)
}

// Redact 非作者/管理员看不到拒绝原因
func Redact(p Post, v Viewer) Post {
	if p.RejectionReason != "" && !v.CanView(p.Author.ID) {
		p.RejectionReason = ""
	}
	return p
}
