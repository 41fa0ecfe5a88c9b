package model

import "strings"

// Role 用户角色，注册时确定
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole 远端角色字符串转换，未知或 "user" 均视为普通成员
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleMember
}

// User 用户模型，由远端服务持有，本地只读缓存
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber"`
	Role        Role   `json:"role"`
	CanUpload   bool   `json:"canUpload"`
}

// IsAdmin 是否管理员
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
