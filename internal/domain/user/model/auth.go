package model

import "time"

// AuthResult 远端登录/注册结果
type AuthResult struct {
	Token string
	User  User
}

// UploadAccessRequest 上传权限申请
type UploadAccessRequest struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requestedAt"`
}
