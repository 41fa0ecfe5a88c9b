package handler

import (
	"net/http"

	"social_moderation/internal/domain/post/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/uploader"
	"social_moderation/pkg/response"
	"social_moderation/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PostHandler 帖子处理器
type PostHandler struct {
	service   service.PostService
	presenter *Presenter
}

// NewPostHandler 创建处理器
func NewPostHandler(service service.PostService, presenter *Presenter) *PostHandler {
	return &PostHandler{service: service, presenter: presenter}
}

// RejectInput 拒绝输入
type RejectInput struct {
	Reason string `json:"reason"`
}

// Feed 首页信息流
// @Summary 信息流
// @Tags Post
// @Produce json
// @Success 200 {object} response.Response
// @Router /posts/feed [get]
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.service.Feed(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, h.presenter.Posts(posts))
}

// UserPosts 某个用户的帖子
// @Summary 用户主页帖子
// @Tags Post
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /posts/users/{userId} [get]
func (h *PostHandler) UserPosts(c *gin.Context) {
	posts, err := h.service.UserPosts(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("userId"))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, h.presenter.Posts(posts))
}

// Create 发帖
// @Summary 发帖（进入待审核）
// @Tags Post
// @Accept multipart/form-data
// @Produce json
// @Param caption formData string false "文字内容"
// @Param files formData file false "媒体文件，可多个"
// @Success 200 {object} response.Response
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "multipart form required")
		return
	}
	caption := ""
	if values := form.Value["caption"]; len(values) > 0 {
		caption = values[0]
	}

	files := make([]uploader.File, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "unable to read "+fh.Filename)
			return
		}
		defer f.Close()
		files = append(files, uploader.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	post, err := h.service.SubmitPost(c.Request.Context(), middleware.CurrentIdentity(c), service.SubmitInput{
		Caption: caption,
		Files:   files,
	})
	if err != nil {
		// 失败时回填文字内容
		response.FromError(c, err, gin.H{"caption": caption})
		return
	}
	response.Success(c, h.presenter.Post(*post))
}

// Submissions 我的提交记录
// @Summary 提交历史
// @Tags Post
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response
// @Router /posts/submissions [get]
func (h *PostHandler) Submissions(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	offset, limit := p.GetPageOffset()

	subs, total, err := h.service.Submissions(c.Request.Context(), middleware.CurrentIdentity(c), offset, limit)
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, p.Result(subs, total))
}

// Approve 审核通过
// @Summary 审核通过
// @Tags Admin
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/approve [put]
func (h *PostHandler) Approve(c *gin.Context) {
	post, err := h.service.Approve(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, h.presenter.Post(*post))
}

// Reject 审核拒绝
// @Summary 审核拒绝
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param input body RejectInput false "拒绝原因"
// @Success 200 {object} response.Response
// @Router /posts/{id}/reject [put]
func (h *PostHandler) Reject(c *gin.Context) {
	var input RejectInput
	// 原因可选，空 body 也合法
	_ = c.ShouldBindJSON(&input)

	post, err := h.service.Reject(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), input.Reason)
	if err != nil {
		response.FromError(c, err, gin.H{"reason": input.Reason})
		return
	}
	response.Success(c, h.presenter.Post(*post))
}

// Pending 待审核列表
// @Summary 待审核列表
// @Tags Admin
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response
// @Router /posts/pending [get]
func (h *PostHandler) Pending(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	offset, limit := p.GetPageOffset()

	posts, total, err := h.service.Pending(c.Request.Context(), middleware.CurrentIdentity(c), offset, limit)
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, p.Result(h.presenter.Posts(posts), total))
}

// Stats 审核统计
// @Summary 审核统计
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /posts/stats [get]
func (h *PostHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.FromError(c, err, nil)
		return
	}
	response.Success(c, stats)
}
