package handler

import (
	"net/http"

	"social_moderation/internal/domain/user/service"
	"social_moderation/internal/pkg/config"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
	cookie  config.SessionConfig
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService, cookie config.SessionConfig) *UserHandler {
	return &UserHandler{service: service, cookie: cookie}
}

// LoginInput 登录输入
type LoginInput struct {
	PhoneNo  string `json:"phoneNo"`
	Password string `json:"password"`
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username        string `json:"username"`
	PhoneNo         string `json:"phoneNo"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login 登录
// @Summary 手机号登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "登录信息"
// @Success 200 {object} response.Response
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	sess, err := h.service.Login(c.Request.Context(), input.PhoneNo, input.Password)
	if err != nil {
		// 失败时回填手机号，密码不回传
		response.FromError(c, err, gin.H{"phoneNo": input.PhoneNo})
		return
	}

	h.setCookie(c, sess.Token, int(h.cookie.TTL().Seconds()))
	response.Success(c, sess.Identity)
}

// Register 注册
// @Summary 注册并登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "注册信息"
// @Success 200 {object} response.Response
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	sess, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username:        input.Username,
		PhoneNo:         input.PhoneNo,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		response.FromError(c, err, gin.H{"username": input.Username, "phoneNo": input.PhoneNo})
		return
	}

	h.setCookie(c, sess.Token, int(h.cookie.TTL().Seconds()))
	response.Success(c, sess.Identity)
}

// Logout 登出
// @Summary 登出
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	// Cookie 总是清除，即使服务端删除失败
	h.setCookie(c, "", -1)
	if err := h.service.Logout(c.Request.Context(), id); err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, nil)
}

// Me 当前身份
// @Summary 当前登录用户
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, middleware.CurrentIdentity(c))
}

// RequestUploadAccess 申请上传权限
// @Summary 申请上传权限
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/upload-access [post]
func (h *UserHandler) RequestUploadAccess(c *gin.Context) {
	req, err := h.service.RequestUploadAccess(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, req)
}

func (h *UserHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}
