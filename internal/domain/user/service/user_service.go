package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social_moderation/internal/domain/user/model"
	"social_moderation/internal/domain/user/repository"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/remote"
	"social_moderation/internal/pkg/session"

	"go.uber.org/zap"
)

const (
	MsgNetworkError       = "Network error. Please check your connection and try again"
	MsgInvalidCredentials = "Invalid Phone number or Password"
	MsgCredentialsMissing = "Phone number and password are required"
	MsgPasswordMismatch   = "Passwords do not match"
)

// AuthSession 登录/注册成功后的会话
type AuthSession struct {
	Identity  session.Identity
	Token     string
	ExpiresAt time.Time
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username        string
	PhoneNo         string
	Password        string
	ConfirmPassword string
}

// UserService 用户服务接口
type UserService interface {
	Login(ctx context.Context, phoneNo, password string) (*AuthSession, error)
	Register(ctx context.Context, input RegisterInput) (*AuthSession, error)
	Logout(ctx context.Context, id session.Identity) error
	RequestUploadAccess(ctx context.Context, actor session.Identity) (*model.UploadAccessRequest, error)
}

type userService struct {
	repo     repository.UserRepository
	sessions *session.Manager
	log      *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, sessions *session.Manager, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{repo: repo, sessions: sessions, log: log}
}

// Login 本地校验通过后才请求远端
func (s *userService) Login(ctx context.Context, phoneNo, password string) (*AuthSession, error) {
	if strings.TrimSpace(phoneNo) == "" {
		return nil, apperr.Validation("phoneNo", MsgCredentialsMissing)
	}
	if password == "" {
		return nil, apperr.Validation("password", MsgCredentialsMissing)
	}
	phone, err := model.ParsePhone(phoneNo)
	if err != nil {
		return nil, err
	}

	result, err := s.repo.Login(ctx, phone, password)
	if err != nil {
		switch {
		case apperr.IsNetwork(err):
			return nil, apperr.WithMessage(err, MsgNetworkError)
		case remote.IsRejection(err):
			return nil, apperr.WithMessage(fmt.Errorf("%w: %v", apperr.ErrAuthFailed, err), MsgInvalidCredentials)
		default:
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	return s.establish(ctx, result)
}

// Register 注册成功后直接登录
func (s *userService) Register(ctx context.Context, input RegisterInput) (*AuthSession, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperr.Validation("username", "Username is required")
	}
	phone, err := model.ParsePhone(input.PhoneNo)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, apperr.Validation("password", "Password is required")
	}
	if input.Password != input.ConfirmPassword {
		return nil, apperr.Validation("confirmPassword", MsgPasswordMismatch)
	}

	result, err := s.repo.Register(ctx, strings.TrimSpace(input.Username), phone, input.Password)
	if err != nil {
		if apperr.IsNetwork(err) {
			return nil, apperr.WithMessage(err, MsgNetworkError)
		}
		if ge, ok := rejection(err); ok {
			return nil, apperr.WithMessage(&apperr.SubmissionError{Op: "registerUser", Err: err}, ge.Message())
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	return s.establish(ctx, result)
}

func (s *userService) establish(ctx context.Context, result *model.AuthResult) (*AuthSession, error) {
	id, token, exp, err := s.sessions.Establish(ctx, result.User, result.Token)
	if err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}
	s.log.Info("session established", zap.String("user_id", result.User.ID), zap.String("role", string(result.User.Role)))
	return &AuthSession{Identity: id, Token: token, ExpiresAt: exp}, nil
}

// Logout 无论远端状态如何都删除本地会话
func (s *userService) Logout(ctx context.Context, id session.Identity) error {
	if err := s.sessions.Destroy(ctx, id); err != nil {
		s.log.Warn("destroy session failed", zap.String("session_id", id.SessionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) RequestUploadAccess(ctx context.Context, actor session.Identity) (*model.UploadAccessRequest, error) {
	if !actor.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	req, err := s.repo.RequestUploadAccess(ctx, actor.RemoteToken, actor.User.ID)
	if err != nil {
		if apperr.IsNetwork(err) {
			return nil, apperr.WithMessage(err, MsgNetworkError)
		}
		return nil, &apperr.SubmissionError{Op: "requestUploadAccess", Err: err}
	}
	return req, nil
}

func rejection(err error) (*remote.GraphQLError, bool) {
	var ge *remote.GraphQLError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
