package session

import (
	"context"
	"errors"
	"time"

	userModel "social_moderation/internal/domain/user/model"
	"social_moderation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager 负责会话的建立、解析和销毁
type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewManager 创建会话管理器
func NewManager(store Store, secret string, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, secret: secret, ttl: ttl, log: log, now: time.Now}
}

// TTL 会话有效期
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Establish 登录或注册成功后建立会话，返回身份和 Cookie 令牌
func (m *Manager) Establish(ctx context.Context, user userModel.User, remoteToken string) (Identity, string, time.Time, error) {
	sid := uuid.New().String()
	now := m.now()

	rec := Record{User: user, RemoteToken: remoteToken, CreatedAt: now}
	if err := m.store.Save(ctx, sid, rec, m.ttl); err != nil {
		return Anonymous(), "", time.Time{}, err
	}

	token, exp, err := utils.GenerateToken(m.secret, sid, m.ttl, now)
	if err != nil {
		_ = m.store.Delete(ctx, sid)
		return Anonymous(), "", time.Time{}, err
	}

	return Identity{SessionID: sid, User: user, Authenticated: true, RemoteToken: remoteToken}, token, exp, nil
}

// Resolve 解析 Cookie 令牌，任何失败都退化为匿名身份
func (m *Manager) Resolve(ctx context.Context, token string) Identity {
	if token == "" {
		return Anonymous()
	}

	claims, err := utils.ParseToken(m.secret, token)
	if err != nil {
		if !utils.IsExpired(err) {
			m.log.Debug("invalid session token", zap.Error(err))
		}
		return Anonymous()
	}

	rec, err := m.store.Load(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.log.Warn("load session failed", zap.String("session_id", claims.SessionID), zap.Error(err))
		}
		return Anonymous()
	}

	return Identity{
		SessionID:     claims.SessionID,
		User:          rec.User,
		Authenticated: true,
		RemoteToken:   rec.RemoteToken,
	}
}

// Destroy 登出，无条件删除服务端会话
func (m *Manager) Destroy(ctx context.Context, id Identity) error {
	if id.SessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, id.SessionID)
}
