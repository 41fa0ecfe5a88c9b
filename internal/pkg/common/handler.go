package handler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/uploader"
	"social_moderation/pkg/response"
	"social_moderation/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Checker 依赖健康检查
type Checker func(ctx context.Context) error

// Handler 通用接口：健康检查与批量上传
type Handler struct {
	checks      map[string]Checker
	uploader    uploader.Uploader
	maxBytes    int64
	concurrency int
}

func NewHandler(checks map[string]Checker, up uploader.Uploader, maxBytes int64, concurrency int) *Handler {
	return &Handler{checks: checks, uploader: up, maxBytes: maxBytes, concurrency: concurrency}
}

// Health 健康检查
// @Summary 健康检查
// @Tags Common
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    response.ErrServerInternal,
			Message: "unhealthy",
			Data:    status,
		})
		return
	}
	response.Success(c, status)
}

// UploadFiles 上传文件 (支持批量)
// @Summary 预上传媒体文件，返回可直接用于发帖的 URL
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func (h *Handler) UploadFiles(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if !id.User.CanUpload && !id.IsAdmin() {
		response.FromError(c, &apperr.PermissionError{Action: "upload media"}, nil)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
		return
	}

	// 先检查全部文件大小，任何一个超限都不开始上传
	for _, fh := range headers {
		if h.maxBytes > 0 && fh.Size > h.maxBytes {
			response.FromError(c, apperr.Validation("files", fmt.Sprintf("%s exceeds the %s limit", fh.Filename, utils.SizeLabel(h.maxBytes))), nil)
			return
		}
	}

	files := make([]uploader.File, 0, len(headers))
	for _, fh := range headers {
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

	urls, err := uploader.UploadAll(c.Request.Context(), h.uploader, files, h.concurrency)
	if err != nil {
		response.FromError(c, &apperr.SubmissionError{Op: "upload", Err: err}, nil)
		return
	}
	response.Success(c, urls)
}
