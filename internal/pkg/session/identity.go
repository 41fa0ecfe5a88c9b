package session

import (
	"context"

	userModel "social_moderation/internal/domain/user/model"
)

// Identity 当前请求的身份
// 零值即匿名身份，登出后回到零值
type Identity struct {
	SessionID     string         `json:"sessionId"`
	User          userModel.User `json:"user"`
	Authenticated bool           `json:"isAuthenticated"`
	// RemoteToken 远端服务签发的令牌，调用远端时透传
	RemoteToken string `json:"-"`
}

// Anonymous 匿名身份
func Anonymous() Identity {
	return Identity{}
}

// IsAdmin 已登录且为管理员
func (i Identity) IsAdmin() bool {
	return i.Authenticated && i.User.IsAdmin()
}

// CanView 是否可以查看 ownerID 名下的非公开内容（本人或管理员）
func (i Identity) CanView(ownerID string) bool {
	if !i.Authenticated {
		return false
	}
	return i.User.IsAdmin() || (ownerID != "" && i.User.ID == ownerID)
}

type ctxKey struct{}

// WithIdentity 将身份注入 context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext 取出身份，没有则返回匿名身份
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}
