package remote

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const userFields = `id username phoneNo role canUpload`

// basicPostFields 为远端 schema 中 Post 的原始字段
const basicPostFields = `
    id
    caption
    createdAt
    user { ` + userFields + ` }
    media { id url type compressed }`

// postFields 扩展了审核状态和评论
const postFields = basicPostFields + `
    status
    comments { id content type createdAt expiresAt user { ` + userFields + ` } }`

const getAllPostsQuery = `query GetAllPosts {
  getAllPosts {` + postFields + `
  }
}`

const getAllPostsBasicQuery = `query GetAllPosts {
  getAllPosts {` + basicPostFields + `
  }
}`

const getUserPostsQuery = `query GetUserPosts($userId: ID!) {
  getUserPosts(userId: $userId) {` + postFields + `
  }
}`

const createPostMutation = `mutation CreatePost($userId: ID!, $caption: String!, $mediaUrls: [String]) {
  createPost(userId: $userId, caption: $caption, mediaUrls: $mediaUrls) {` + postFields + `
  }
}`

const createPostBasicMutation = `mutation CreatePost($userId: ID!, $caption: String!, $mediaUrls: [String]) {
  createPost(userId: $userId, caption: $caption, mediaUrls: $mediaUrls) {` + basicPostFields + `
  }
}`

const loginMutation = `mutation LoginUser($phoneNo: Int!, $password: String!) {
  login(phoneNo: $phoneNo, password: $password) {
    token
    user { ` + userFields + ` }
  }
}`

const registerMutation = `mutation RegisterUser($username: String!, $phoneNo: Int!, $password: String!) {
  registerUser(username: $username, phoneNo: $phoneNo, password: $password) {
    token
    user { ` + userFields + ` }
  }
}`

const addCommentMutation = `mutation AddComment($postId: ID!, $userId: ID!, $content: String!, $type: String!) {
  addComment(postId: $postId, userId: $userId, content: $content, type: $type) {
    id content type createdAt expiresAt
    user { ` + userFields + ` }
  }
}`

const approveUploadRequestMutation = `mutation ApproveUploadRequest($requestId: ID!) {
  approveUploadRequest(requestId: $requestId) {
    id requestedAt status
    user { ` + userFields + ` }
  }
}`

const requestUploadAccessMutation = `mutation RequestUploadAccess($userId: ID!) {
  requestUploadAccess(userId: $userId) {
    id requestedAt status
    user { ` + userFields + ` }
  }
}`

const getNotificationsQuery = `query GetNotifications($userId: ID!) {
  getNotifications(userId: $userId) {
    id type title message seen createdAt actionUrl
  }
}`

const getNotificationsBasicQuery = `query GetNotifications($userId: ID!) {
  getNotifications(userId: $userId) {
    id message seen createdAt
  }
}`

// unknownField 远端 schema 不认识所选字段（查询校验阶段失败，未执行）
func unknownField(err error) bool {
	var ge *GraphQLError
	if !errors.As(err, &ge) {
		return false
	}
	for _, m := range ge.Messages {
		if strings.Contains(m, "Cannot query field") {
			return true
		}
	}
	return false
}

// doCompat 先发送扩展查询，远端不支持时改用 basic 并记住该操作
// 缺失的字段保持零值：status 为空视为待审核，通知类型按 ParseKind 的默认值处理
func (c *Client) doCompat(ctx context.Context, op, extended, basic string, vars map[string]interface{}, token string, out interface{}) error {
	if _, ok := c.basicOps.Load(op); !ok {
		err := c.Do(ctx, op, extended, vars, token, out)
		if !unknownField(err) {
			return err
		}
		c.basicOps.Store(op, struct{}{})
		c.log.Warn("remote schema lacks extended fields, using basic query", zap.String("op", op), zap.Error(err))
	}
	return c.Do(ctx, op, basic, vars, token, out)
}

// GetAllPosts 拉取全部帖子（远端不按状态过滤）
func (c *Client) GetAllPosts(ctx context.Context, token string) ([]*Post, error) {
	var out struct {
		GetAllPosts []*Post `json:"getAllPosts"`
	}
	if err := c.doCompat(ctx, "getAllPosts", getAllPostsQuery, getAllPostsBasicQuery, nil, token, &out); err != nil {
		return nil, err
	}
	return out.GetAllPosts, nil
}

// GetUserPosts 拉取某个用户的帖子；远端没有 getUserPosts 时从全量列表中筛选
func (c *Client) GetUserPosts(ctx context.Context, token, userID string) ([]*Post, error) {
	if _, ok := c.basicOps.Load("getUserPosts"); !ok {
		var out struct {
			GetUserPosts []*Post `json:"getUserPosts"`
		}
		vars := map[string]interface{}{"userId": userID}
		err := c.Do(ctx, "getUserPosts", getUserPostsQuery, vars, token, &out)
		if !unknownField(err) {
			if err != nil {
				return nil, err
			}
			return out.GetUserPosts, nil
		}
		c.basicOps.Store("getUserPosts", struct{}{})
		c.log.Warn("remote schema lacks getUserPosts, filtering getAllPosts", zap.Error(err))
	}

	all, err := c.GetAllPosts(ctx, token)
	if err != nil {
		return nil, err
	}
	var mine []*Post
	for _, p := range all {
		if p != nil && p.User != nil && p.User.ID == userID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

// CreatePost 创建帖子，id、createdAt、初始状态由远端分配
func (c *Client) CreatePost(ctx context.Context, token, userID, caption string, mediaURLs []string) (*Post, error) {
	var out struct {
		CreatePost *Post `json:"createPost"`
	}
	if mediaURLs == nil {
		mediaURLs = []string{}
	}
	vars := map[string]interface{}{"userId": userID, "caption": caption, "mediaUrls": mediaURLs}
	if err := c.doCompat(ctx, "createPost", createPostMutation, createPostBasicMutation, vars, token, &out); err != nil {
		return nil, err
	}
	if out.CreatePost == nil {
		return nil, &GraphQLError{Op: "createPost", Messages: []string{"no post returned"}}
	}
	return out.CreatePost, nil
}

// Login 手机号 + 密码登录
func (c *Client) Login(ctx context.Context, phoneNo int64, password string) (*AuthResponse, error) {
	var out struct {
		Login *AuthResponse `json:"login"`
	}
	vars := map[string]interface{}{"phoneNo": phoneNo, "password": password}
	if err := c.Do(ctx, "login", loginMutation, vars, "", &out); err != nil {
		return nil, err
	}
	if out.Login == nil {
		return nil, &GraphQLError{Op: "login", Messages: []string{"No user data returned. Please try again"}}
	}
	return out.Login, nil
}

// RegisterUser 注册
func (c *Client) RegisterUser(ctx context.Context, username string, phoneNo int64, password string) (*AuthResponse, error) {
	var out struct {
		RegisterUser *AuthResponse `json:"registerUser"`
	}
	vars := map[string]interface{}{"username": username, "phoneNo": phoneNo, "password": password}
	if err := c.Do(ctx, "registerUser", registerMutation, vars, "", &out); err != nil {
		return nil, err
	}
	if out.RegisterUser == nil {
		return nil, &GraphQLError{Op: "registerUser", Messages: []string{"No user data returned"}}
	}
	return out.RegisterUser, nil
}

// AddComment 添加评论，commentType 为 text 或 audio
func (c *Client) AddComment(ctx context.Context, token, postID, userID, content, commentType string) (*Comment, error) {
	var out struct {
		AddComment *Comment `json:"addComment"`
	}
	vars := map[string]interface{}{"postId": postID, "userId": userID, "content": content, "type": commentType}
	if err := c.Do(ctx, "addComment", addCommentMutation, vars, token, &out); err != nil {
		return nil, err
	}
	if out.AddComment == nil {
		return nil, &GraphQLError{Op: "addComment", Messages: []string{"no comment returned"}}
	}
	return out.AddComment, nil
}

// ApproveUploadRequest 审核通过
func (c *Client) ApproveUploadRequest(ctx context.Context, token, requestID string) (*UploadRequest, error) {
	var out struct {
		ApproveUploadRequest *UploadRequest `json:"approveUploadRequest"`
	}
	vars := map[string]interface{}{"requestId": requestID}
	if err := c.Do(ctx, "approveUploadRequest", approveUploadRequestMutation, vars, token, &out); err != nil {
		return nil, err
	}
	return out.ApproveUploadRequest, nil
}

// RequestUploadAccess 申请上传权限
func (c *Client) RequestUploadAccess(ctx context.Context, token, userID string) (*UploadRequest, error) {
	var out struct {
		RequestUploadAccess *UploadRequest `json:"requestUploadAccess"`
	}
	vars := map[string]interface{}{"userId": userID}
	if err := c.Do(ctx, "requestUploadAccess", requestUploadAccessMutation, vars, token, &out); err != nil {
		return nil, err
	}
	if out.RequestUploadAccess == nil {
		return nil, &GraphQLError{Op: "requestUploadAccess", Messages: []string{"no request returned"}}
	}
	return out.RequestUploadAccess, nil
}

// GetNotifications 拉取通知
func (c *Client) GetNotifications(ctx context.Context, token, userID string) ([]*Notification, error) {
	var out struct {
		GetNotifications []*Notification `json:"getNotifications"`
	}
	vars := map[string]interface{}{"userId": userID}
	if err := c.doCompat(ctx, "getNotifications", getNotificationsQuery, getNotificationsBasicQuery, vars, token, &out); err != nil {
		return nil, err
	}
	return out.GetNotifications, nil
}

// PhoneString 远端以整数保存手机号
func (u User) PhoneString() string {
	if u.PhoneNo == 0 {
		return ""
	}
	return strconv.FormatInt(u.PhoneNo, 10)
}
