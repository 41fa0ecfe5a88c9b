package repository

import (
	"context"

	"social_moderation/internal/domain/user/model"
	"social_moderation/internal/pkg/remote"
	"social_moderation/pkg/utils"
)

// UserRepository 用户数据由远端持有，这里只做转换
type UserRepository interface {
	Login(ctx context.Context, phoneNo int64, password string) (*model.AuthResult, error)
	Register(ctx context.Context, username string, phoneNo int64, password string) (*model.AuthResult, error)
	RequestUploadAccess(ctx context.Context, token, userID string) (*model.UploadAccessRequest, error)
}

type userRepository struct {
	client *remote.Client
}

func NewUserRepository(client *remote.Client) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Login(ctx context.Context, phoneNo int64, password string) (*model.AuthResult, error) {
	resp, err := r.client.Login(ctx, phoneNo, password)
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{Token: resp.Token, User: ToUser(&resp.User)}, nil
}

func (r *userRepository) Register(ctx context.Context, username string, phoneNo int64, password string) (*model.AuthResult, error) {
	resp, err := r.client.RegisterUser(ctx, username, phoneNo, password)
	if err != nil {
		return nil, err
	}
	return &model.AuthResult{Token: resp.Token, User: ToUser(&resp.User)}, nil
}

func (r *userRepository) RequestUploadAccess(ctx context.Context, token, userID string) (*model.UploadAccessRequest, error) {
	req, err := r.client.RequestUploadAccess(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	return &model.UploadAccessRequest{
		ID:          req.ID,
		Status:      req.Status,
		RequestedAt: utils.ParseTimestamp(req.RequestedAt),
	}, nil
}

// ToUser 远端用户转换为本地模型，nil 返回零值
func ToUser(u *remote.User) model.User {
	if u == nil {
		return model.User{}
	}
	role := model.ParseRole(u.Role)
	canUpload := role == model.RoleAdmin
	if u.CanUpload != nil {
		canUpload = *u.CanUpload
	}
	return model.User{
		ID:          u.ID,
		Username:    u.Username,
		PhoneNumber: u.PhoneString(),
		Role:        role,
		CanUpload:   canUpload,
	}
}
