package handler

import (
	"net/http"
	"strconv"

	"social_moderation/internal/domain/comment/model"
	"social_moderation/internal/domain/comment/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
)

// CommentHandler 评论处理器
type CommentHandler struct {
	service  service.CommentService
	maxBytes int64
}

// NewCommentHandler maxBytes 为语音文件上限，<= 0 不在读取前检查
func NewCommentHandler(service service.CommentService, maxBytes int64) *CommentHandler {
	return &CommentHandler{service: service, maxBytes: maxBytes}
}

// CreateInput 文字评论
type CreateInput struct {
	Content string `json:"content"`
}

// List 评论列表
// @Summary 评论列表（含语音剩余时间）
// @Tags Comment
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	views, err := h.service.List(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, views)
}

// Create 文字评论
// @Summary 发表文字评论
// @Tags Comment
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param input body CreateInput true "评论内容"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), service.CreateInput{
		Content: input.Content,
	})
	if err != nil {
		response.FromError(c, err, gin.H{"content": input.Content})
		return
	}
	response.Success(c, comment)
}

// CreateAudio 语音评论
// @Summary 发表语音评论（48 小时后过期）
// @Tags Comment
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "帖子ID"
// @Param audio formData file true "录音文件"
// @Param duration formData int false "录音时长（秒）"
// @Success 200 {object} response.Response
// @Router /posts/{id}/comments/audio [post]
func (h *CommentHandler) CreateAudio(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "audio file is required")
		return
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		response.FromError(c, model.AudioTooLarge(h.maxBytes), nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "unable to read audio file")
		return
	}
	defer f.Close()
	duration, _ := strconv.Atoi(c.PostForm("duration"))

	// 上传的文件作为录音设备
	comment, err := h.service.RecordAudio(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"),
		model.ReaderDevice{Source: f}, duration)
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, comment)
}
